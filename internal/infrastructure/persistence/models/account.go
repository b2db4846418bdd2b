package models

import (
	"github.com/dealledger/backend/internal/domain/ledger"
	"github.com/dealledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccountModel is the persistence model for the chart of accounts
type AccountModel struct {
	TenantAggregateModel
	Code        string               `gorm:"type:varchar(20);not null"`
	Name        string               `gorm:"type:varchar(200);not null"`
	Type        ledger.AccountType   `gorm:"column:account_type;type:varchar(20);not null;index"`
	ParentID    *uuid.UUID           `gorm:"type:uuid;index"`
	Description string               `gorm:"type:text"`
	Currency    valueobject.Currency `gorm:"type:varchar(3);not null"`
	IsHeader    bool                 `gorm:"not null;default:false"`
	IsActive    bool                 `gorm:"not null;default:true"`
	DeletedAt   gorm.DeletedAt       `gorm:"index"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Type:                m.Type,
		ParentID:            m.ParentID,
		Description:         m.Description,
		Currency:            m.Currency,
		IsHeader:            m.IsHeader,
		IsActive:            m.IsActive,
	}
}

// AccountModelFromDomain creates a persistence model from a domain Account
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{
		Code:        a.Code,
		Name:        a.Name,
		Type:        a.Type,
		ParentID:    a.ParentID,
		Description: a.Description,
		Currency:    a.Currency,
		IsHeader:    a.IsHeader,
		IsActive:    a.IsActive,
	}
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	return m
}
