package repositoryimpl

import (
	"context"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/assignment"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// pendingPairIndex allows a single Pending request per task and candidate.
const pendingPairIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_assignment_pending_pair
ON assignment_requests(task_id, assigned_to_user_id) WHERE status = 'Pending'`

type SQLRepository struct {
	db *gorm.DB
}

func NewSQLRepository(db *gorm.DB) (*SQLRepository, error) {
	if err := db.AutoMigrate(&assignment.Request{}); err != nil {
		return nil, cerr.WrapDBError("assignment requests", err)
	}
	if err := db.Exec(pendingPairIndex).Error; err != nil {
		return nil, cerr.WrapDBError("assignment requests", err)
	}
	return &SQLRepository{db: db}, nil
}

func (r *SQLRepository) Create(ctx context.Context, req *assignment.Request) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return cerr.WrapDBError("assignment request", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*assignment.Request, error) {
	var req assignment.Request
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapDBError("assignment request", err)
	}
	return &req, nil
}

func (r *SQLRepository) Update(ctx context.Context, req *assignment.Request) error {
	res := r.db.WithContext(ctx).Model(&assignment.Request{}).Where("id = ?", req.ID).Select("*").Updates(req)
	if res.Error != nil {
		return cerr.WrapDBError("assignment request", res.Error)
	}
	if res.RowsAffected == 0 {
		return cerr.NewError(cerr.NotFound, "assignment request not found", nil)
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context, f assignment.Filter) ([]*assignment.Request, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if f.TaskID != "" {
		q = q.Where("task_id = ?", f.TaskID)
	}
	if f.UserID != "" {
		q = q.Where("assigned_to_user_id = ?", f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []*assignment.Request
	if err := q.Find(&out).Error; err != nil {
		return nil, cerr.WrapDBError("assignment requests", err)
	}
	return out, nil
}

func (r *SQLRepository) ListByTasks(ctx context.Context, taskIDs []string) (map[string][]*assignment.Request, error) {
	out := make(map[string][]*assignment.Request, len(taskIDs))
	if len(taskIDs) == 0 {
		return out, nil
	}
	var reqs []*assignment.Request
	err := r.db.WithContext(ctx).
		Where("task_id IN ?", taskIDs).
		Order("created_at ASC, id ASC").
		Find(&reqs).Error
	if err != nil {
		return nil, cerr.WrapDBError("assignment requests", err)
	}
	for _, req := range reqs {
		out[req.TaskID] = append(out[req.TaskID], req)
	}
	return out, nil
}
