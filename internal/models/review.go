package models

type Review struct {
	BaseModel
	ReviewerID  string `gorm:"type:uuid;not null;index"`
	UserID      string `gorm:"type:uuid;not null;index"`
	Rating      int    `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Description string `gorm:"type:text"`

	Reviewer User `gorm:"foreignKey:ReviewerID;constraint:OnDelete:CASCADE"`
	User     User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
