// Package docstore keeps one YAML document per entity in a storage.Storage.
package docstore

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

// Collection stores documents of type T under prefix/<id>.yaml. Name is
// the singular entity name used in error messages.
type Collection[T any] struct {
	storage storage.Storage
	prefix  string
	name    string
}

func NewCollection[T any](s storage.Storage, prefix, name string) *Collection[T] {
	return &Collection[T]{storage: s, prefix: prefix, name: name}
}

func (c *Collection[T]) path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", c.prefix, id)
}

// Create fails with AlreadyExists when a document with id is present.
func (c *Collection[T]) Create(ctx context.Context, id string, doc *T) error {
	exists, err := c.storage.Exists(ctx, c.path(id))
	if err != nil {
		return cerr.WrapStorageWriteError(c.name, err)
	}
	if exists {
		return cerr.NewError(cerr.AlreadyExists, fmt.Sprintf("%s already exists", c.name), nil)
	}
	return c.write(ctx, id, doc)
}

// Update fails with NotFound when no document with id is present.
func (c *Collection[T]) Update(ctx context.Context, id string, doc *T) error {
	exists, err := c.storage.Exists(ctx, c.path(id))
	if err != nil {
		return cerr.WrapStorageWriteError(c.name, err)
	}
	if !exists {
		return cerr.NewError(cerr.NotFound, fmt.Sprintf("%s not found", c.name), nil)
	}
	return c.write(ctx, id, doc)
}

func (c *Collection[T]) write(ctx context.Context, id string, doc *T) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal %s: %w", c.name, err))
	}
	if err := c.storage.Write(ctx, c.path(id), data); err != nil {
		return cerr.WrapStorageWriteError(c.name, err)
	}
	return nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	data, err := c.storage.Read(ctx, c.path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError(c.name, err)
	}
	var doc T
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal %s: %w", c.name, err))
	}
	return &doc, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.storage.Delete(ctx, c.path(id)); err != nil {
		return cerr.WrapStorageDeleteError(c.name, err)
	}
	return nil
}

// All loads every document in path order. Documents that cannot be read or
// decoded are skipped, matching a listing that races a concurrent delete.
func (c *Collection[T]) All(ctx context.Context) ([]*T, error) {
	paths, err := c.storage.List(ctx, c.prefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError(c.prefix, err)
	}
	docs := make([]*T, 0, len(paths))
	for _, p := range paths {
		data, err := c.storage.Read(ctx, p)
		if err != nil {
			continue
		}
		var doc T
		if err := yaml.Unmarshal(data, &doc); err != nil {
			continue
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}
