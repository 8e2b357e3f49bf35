package models

// CandidateRecord is a row of the external registry (legacy table tblvl)
// used to pre-fill new card forms. The application never writes it.
type CandidateRecord struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	IDNum    string `gorm:"column:id_num;type:varchar(32);index" json:"idnum"`
	FullName string `gorm:"type:varchar(150);index" json:"fullname"`
	Address  string `gorm:"type:text" json:"address"`
	Barangay string `gorm:"type:varchar(100)" json:"brgy"`
}

func (CandidateRecord) TableName() string { return "candidate_registry" }
