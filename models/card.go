package models

import (
	"time"
)

// CardStatus print state of a card.
type CardStatus string

const (
	CardStatusID      CardStatus = "ID"
	CardStatusPrinted CardStatus = "PRINTED"
)

func (s CardStatus) Valid() bool {
	return s == CardStatusID || s == CardStatusPrinted
}

// CardInfo holds the columns shared by both card tables.
type CardInfo struct {
	FullName       string     `gorm:"type:varchar(150);not null;index" json:"fullName" validate:"required,max=150"`
	BirthDate      string     `gorm:"type:varchar(10)" json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Address        string     `gorm:"type:text" json:"address" validate:"max=500"`
	ContactPerson  string     `gorm:"type:varchar(150)" json:"contactPerson" validate:"max=150"`
	ContactNum     string     `gorm:"type:varchar(30)" json:"contactNum" validate:"max=30"`
	ContactAddress string     `gorm:"type:text" json:"contactAddress" validate:"max=500"`
	Status         CardStatus `gorm:"type:varchar(10);not null;default:ID;index" json:"status" validate:"omitempty,oneof=ID PRINTED"`
	IssuedAt       time.Time  `gorm:"not null" json:"dateID"`
}

func (i *CardInfo) columns() map[string]interface{} {
	return map[string]interface{}{
		"full_name":       i.FullName,
		"birth_date":      i.BirthDate,
		"address":         i.Address,
		"contact_person":  i.ContactPerson,
		"contact_num":     i.ContactNum,
		"contact_address": i.ContactAddress,
		"status":          i.Status,
	}
}

// CardRecord is implemented by the pointer types of every card table.
type CardRecord interface {
	GetID() uint
	ResetBase()
	CardNo() string
	SetCardNo(cardNo string)
	Info() *CardInfo
	// UpdateColumns lists the editable columns, card_no included.
	UpdateColumns() map[string]interface{}
}

// SeniorCard senior citizen ID (legacy table tblsc).
type SeniorCard struct {
	BaseModel
	SCID string `gorm:"column:card_no;type:varchar(32);uniqueIndex;not null" json:"scid"`
	CardInfo
}

func (SeniorCard) TableName() string { return "senior_cards" }

func (c *SeniorCard) GetID() uint             { return c.ID }
func (c *SeniorCard) CardNo() string          { return c.SCID }
func (c *SeniorCard) SetCardNo(cardNo string) { c.SCID = cardNo }
func (c *SeniorCard) Info() *CardInfo         { return &c.CardInfo }

func (c *SeniorCard) UpdateColumns() map[string]interface{} {
	cols := c.CardInfo.columns()
	cols["card_no"] = c.SCID
	return cols
}

// YouthCard youth ID (legacy table tblyouth).
type YouthCard struct {
	BaseModel
	YouthID    string `gorm:"column:card_no;type:varchar(32);uniqueIndex;not null" json:"youthid"`
	Barangay   string `gorm:"type:varchar(100);index" json:"barangay" validate:"max=100"`
	Affiliates string `gorm:"type:varchar(150)" json:"affiliates" validate:"max=150"`
	CardInfo
}

func (YouthCard) TableName() string { return "youth_cards" }

func (c *YouthCard) GetID() uint             { return c.ID }
func (c *YouthCard) CardNo() string          { return c.YouthID }
func (c *YouthCard) SetCardNo(cardNo string) { c.YouthID = cardNo }
func (c *YouthCard) Info() *CardInfo         { return &c.CardInfo }

func (c *YouthCard) UpdateColumns() map[string]interface{} {
	cols := c.CardInfo.columns()
	cols["card_no"] = c.YouthID
	cols["barangay"] = c.Barangay
	cols["affiliates"] = c.Affiliates
	return cols
}

var (
	_ CardRecord = (*SeniorCard)(nil)
	_ CardRecord = (*YouthCard)(nil)
)

// CardPtr constrains generic card code to *SeniorCard or *YouthCard style pointers.
type CardPtr[T any] interface {
	*T
	CardRecord
}
