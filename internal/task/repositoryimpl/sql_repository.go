package repositoryimpl

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type taskRow struct {
	ID          string `gorm:"primaryKey"`
	Title       string
	Description string
	Priority    string `gorm:"index"`
	DueDate     *time.Time
	Checklist   []task.ChecklistItem `gorm:"serializer:json"`
	Progress    int
	Status      string `gorm:"index"`
	CreatedBy   string `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (taskRow) TableName() string {
	return "tasks"
}

// assigneeRow keeps the roster queryable by user for overload counts and
// visibility filters.
type assigneeRow struct {
	TaskID    string `gorm:"primaryKey"`
	Position  int    `gorm:"primaryKey"`
	UserID    string `gorm:"index"`
	Source    string
	RequestID string
}

func (assigneeRow) TableName() string {
	return "task_assignees"
}

const rosterOf = "SELECT task_id FROM task_assignees WHERE user_id = ?"

type SQLRepository struct {
	db *gorm.DB
}

func NewSQLRepository(db *gorm.DB) (*SQLRepository, error) {
	if err := db.AutoMigrate(&taskRow{}, &assigneeRow{}); err != nil {
		return nil, cerr.WrapDBError("tasks", err)
	}
	return &SQLRepository{db: db}, nil
}

func toRow(t *task.Task) *taskRow {
	return &taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Checklist:   t.Checklist,
		Progress:    t.Progress,
		Status:      string(t.Status),
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func assigneeRows(t *task.Task) []assigneeRow {
	rows := make([]assigneeRow, len(t.AssignedTo))
	for i, a := range t.AssignedTo {
		rows[i] = assigneeRow{TaskID: t.ID, Position: i, UserID: a.UserID, Source: string(a.Source), RequestID: a.RequestID}
	}
	return rows
}

func fromRow(row *taskRow, assignees []assigneeRow) *task.Task {
	t := &task.Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Priority:    task.Priority(row.Priority),
		DueDate:     row.DueDate,
		Checklist:   row.Checklist,
		Progress:    row.Progress,
		Status:      task.Status(row.Status),
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	for _, a := range assignees {
		t.AssignedTo = append(t.AssignedTo, task.Assignee{
			UserID:    a.UserID,
			Source:    task.Source(a.Source),
			RequestID: a.RequestID,
		})
	}
	return t
}

func (r *SQLRepository) Create(ctx context.Context, t *task.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toRow(t)).Error; err != nil {
			return err
		}
		if rows := assigneeRows(t); len(rows) > 0 {
			return tx.Create(&rows).Error
		}
		return nil
	})
	if err != nil {
		return cerr.WrapDBError("task", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	var row taskRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, cerr.WrapDBError("task", err)
	}
	tasks, err := r.attach(ctx, []*taskRow{&row})
	if err != nil {
		return nil, err
	}
	return tasks[0], nil
}

// attach loads the rosters of rows in one query.
func (r *SQLRepository) attach(ctx context.Context, rows []*taskRow) ([]*task.Task, error) {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	var assignees []assigneeRow
	if len(ids) > 0 {
		err := r.db.WithContext(ctx).
			Where("task_id IN ?", ids).
			Order("task_id, position").
			Find(&assignees).Error
		if err != nil {
			return nil, cerr.WrapDBError("task assignees", err)
		}
	}
	byTask := make(map[string][]assigneeRow, len(rows))
	for _, a := range assignees {
		byTask[a.TaskID] = append(byTask[a.TaskID], a)
	}
	tasks := make([]*task.Task, len(rows))
	for i, row := range rows {
		tasks[i] = fromRow(row, byTask[row.ID])
	}
	return tasks, nil
}

func (r *SQLRepository) filtered(ctx context.Context, f task.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&taskRow{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", string(f.Priority))
	}
	if f.CreatedBy != "" {
		q = q.Where("created_by = ?", f.CreatedBy)
	}
	if f.AssigneeID != "" {
		q = q.Where("id IN ("+rosterOf+")", f.AssigneeID)
	}
	if f.Query != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(f.Query)+"%")
	}
	if f.DueBefore != nil {
		q = q.Where("due_date IS NOT NULL AND due_date < ?", *f.DueBefore)
	}
	if v := f.Visible; v != nil {
		if len(v.TaskIDs) > 0 {
			q = q.Where("(id IN ("+rosterOf+") OR id IN ?)", v.UserID, v.TaskIDs)
		} else {
			q = q.Where("id IN ("+rosterOf+")", v.UserID)
		}
	}
	return q
}

func orderClause(s task.Sort) string {
	dir := " ASC"
	nulls := "due_date IS NULL ASC, "
	if s.Desc {
		dir = " DESC"
		nulls = "due_date IS NULL DESC, "
	}
	switch s.Field {
	case task.SortUpdatedAt:
		return "updated_at" + dir + ", id ASC"
	case task.SortDueDate:
		return nulls + "due_date" + dir + ", id ASC"
	case task.SortPriority:
		return "CASE priority WHEN 'High' THEN 0 WHEN 'Medium' THEN 1 ELSE 2 END" + dir + ", id ASC"
	case task.SortTitle:
		return "LOWER(title)" + dir + ", id ASC"
	default:
		return "created_at" + dir + ", id ASC"
	}
}

func (r *SQLRepository) List(ctx context.Context, f task.Filter, s task.Sort, limit, offset int) ([]*task.Task, int, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, cerr.WrapDBError("tasks", err)
	}
	q := r.filtered(ctx, f).Order(orderClause(s)).Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []*taskRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, cerr.WrapDBError("tasks", err)
	}
	tasks, err := r.attach(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return tasks, int(total), nil
}

func (r *SQLRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&taskRow{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, cerr.WrapDBError("tasks", err)
	}
	return ids, nil
}

func (r *SQLRepository) Update(ctx context.Context, t *task.Task) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&taskRow{}).Where("id = ?", t.ID).Select("*").Updates(toRow(t))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("task_id = ?", t.ID).Delete(&assigneeRow{}).Error; err != nil {
			return err
		}
		if rows := assigneeRows(t); len(rows) > 0 {
			return tx.Create(&rows).Error
		}
		return nil
	})
	if err != nil {
		return cerr.WrapDBError("task", err)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&assigneeRow{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&taskRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return cerr.WrapDBError("task", err)
	}
	return nil
}

func (r *SQLRepository) Count(ctx context.Context, f task.Filter) (int, error) {
	var n int64
	if err := r.filtered(ctx, f).Count(&n).Error; err != nil {
		return 0, cerr.WrapDBError("tasks", err)
	}
	return int(n), nil
}

func (r *SQLRepository) CountByStatus(ctx context.Context, f task.Filter) (map[task.Status]int, error) {
	var rows []struct {
		Status string
		N      int
	}
	if err := r.filtered(ctx, f).Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error; err != nil {
		return nil, cerr.WrapDBError("tasks", err)
	}
	counts := make(map[task.Status]int, len(rows))
	for _, row := range rows {
		counts[task.Status(row.Status)] = row.N
	}
	return counts, nil
}

func (r *SQLRepository) CountActiveHighPriority(ctx context.Context, userID string) (int, error) {
	var n int64
	err := r.filtered(ctx, task.Filter{AssigneeID: userID, Priority: task.PriorityHigh}).
		Where("status <> ?", string(task.StatusCompleted)).
		Count(&n).Error
	if err != nil {
		return 0, cerr.WrapDBError("tasks", err)
	}
	return int(n), nil
}
