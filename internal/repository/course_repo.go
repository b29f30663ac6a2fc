package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/maikostudios/SustentaM-sub001/internal/model"
	pkgerrors "github.com/maikostudios/SustentaM-sub001/pkg/errors"
)

const tableCourses = "courses"

// CourseFilter 课程列表筛选条件；零值字段不参与筛选
type CourseFilter struct {
	Modality string
	Keyword  string     // 匹配课程代码或名称
	From     *time.Time // 与 [From, To] 有交集的课程
	To       *time.Time
}

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id string) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return pkgerrors.Wrap("create", tableCourses, r.db.WithContext(ctx).Omit("Sessions").Create(course).Error)
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, pkgerrors.Wrap("get", tableCourses, err)
	}
	return &course, nil
}

func (r *courseRepo) List(ctx context.Context, filter CourseFilter) ([]model.Course, error) {
	var courses []model.Course
	db := r.db.WithContext(ctx)

	if filter.Modality != "" {
		db = db.Where("modality = ?", filter.Modality)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("code LIKE ? OR name LIKE ?", like, like)
	}
	if filter.From != nil {
		db = db.Where("end_date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("start_date <= ?", *filter.To)
	}

	err := db.Order("start_date ASC, code ASC").Find(&courses).Error
	return courses, pkgerrors.Wrap("list", tableCourses, err)
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	return pkgerrors.Wrap("update", tableCourses, r.db.WithContext(ctx).Omit("Sessions").Save(course).Error)
}

func (r *courseRepo) Delete(ctx context.Context, id string) error {
	return pkgerrors.Wrap("delete", tableCourses, r.db.WithContext(ctx).
		Where("course_id = ?", id).
		Delete(&model.Course{}).Error)
}
