package repositoryimpl

import (
	"context"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type SQLRepository struct {
	db *gorm.DB
}

func NewSQLRepository(db *gorm.DB) (*SQLRepository, error) {
	if err := db.AutoMigrate(&user.User{}); err != nil {
		return nil, cerr.WrapDBError("users", err)
	}
	return &SQLRepository{db: db}, nil
}

func (r *SQLRepository) Create(ctx context.Context, u *user.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return cerr.WrapDBError("user", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapDBError("user", err)
	}
	return &u, nil
}

func (r *SQLRepository) GetMany(ctx context.Context, ids []string) (map[string]*user.User, error) {
	out := make(map[string]*user.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []*user.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, cerr.WrapDBError("users", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (r *SQLRepository) List(ctx context.Context, limit, offset int) ([]*user.User, int, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&user.User{}).Count(&total).Error; err != nil {
		return nil, 0, cerr.WrapDBError("users", err)
	}
	var users []*user.User
	q := r.db.WithContext(ctx).Order("created_at ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, cerr.WrapDBError("users", err)
	}
	return users, int(total), nil
}

func (r *SQLRepository) Update(ctx context.Context, u *user.User) error {
	res := r.db.WithContext(ctx).Model(&user.User{}).Where("id = ?", u.ID).Select("*").Updates(u)
	if res.Error != nil {
		return cerr.WrapDBError("user", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "user not found", nil)
	}
	return nil
}
