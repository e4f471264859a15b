package repository

import (
	"github.com/fadilmartias/job-portal/internal/model"
	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db}
}

func (r *CompanyRepository) FindByID(id string) (*model.Company, error) {
	var c model.Company
	err := r.db.First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) Create(company *model.Company) error {
	return r.db.Create(company).Error
}
