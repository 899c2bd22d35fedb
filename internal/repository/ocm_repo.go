package repository

import (
	"context"

	"gorm.io/gorm"

	"equipcare/backend/internal/model"
)

// OCMRepository OCM 设备数据访问接口
type OCMRepository interface {
	Create(ctx context.Context, e *model.OCMEquipment) error
	GetBySerial(ctx context.Context, serial string) (*model.OCMEquipment, error)
	List(ctx context.Context) ([]model.OCMEquipment, error)
	Update(ctx context.Context, e *model.OCMEquipment) error
	Delete(ctx context.Context, serial string) error
	UpdateStatus(ctx context.Context, serial, status string) error
	Reindex(ctx context.Context) error
}

type ocmRepo struct {
	db *gorm.DB
}

// NewOCMRepo 创建 OCMRepository 实例
func NewOCMRepo(db *gorm.DB) OCMRepository {
	return &ocmRepo{db: db}
}

func (r *ocmRepo) Create(ctx context.Context, e *model.OCMEquipment) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ocmRepo) GetBySerial(ctx context.Context, serial string) (*model.OCMEquipment, error) {
	var e model.OCMEquipment
	if err := r.db.WithContext(ctx).Where("serial = ?", serial).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ocmRepo) List(ctx context.Context) ([]model.OCMEquipment, error) {
	var list []model.OCMEquipment
	err := r.db.WithContext(ctx).Order("sequence_no ASC, id ASC").Find(&list).Error
	return list, err
}

func (r *ocmRepo) Update(ctx context.Context, e *model.OCMEquipment) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *ocmRepo) Delete(ctx context.Context, serial string) error {
	return r.db.WithContext(ctx).Where("serial = ?", serial).Delete(&model.OCMEquipment{}).Error
}

func (r *ocmRepo) UpdateStatus(ctx context.Context, serial, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.OCMEquipment{}).
		Where("serial = ?", serial).
		Update("status", status).Error
}

func (r *ocmRepo) Reindex(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE ocm_equipment SET sequence_no = ranked.rn
		FROM (SELECT id, ROW_NUMBER() OVER (ORDER BY sequence_no ASC, id ASC) AS rn FROM ocm_equipment) ranked
		WHERE ocm_equipment.id = ranked.id`).Error
}
