package models

type Transaction struct {
	BaseModel
	UserID    string            `gorm:"type:uuid;not null;index"`
	OfferID   string            `gorm:"type:uuid;not null;uniqueIndex"`
	Amount    float64           `gorm:"type:numeric(10,2);not null"`
	Status    TransactionStatus `gorm:"type:varchar(16);not null;default:'PENDING'"`
	PaymentID string            `gorm:"type:varchar(255)"`

	User  User  `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Offer Offer `gorm:"foreignKey:OfferID;constraint:OnDelete:RESTRICT"`
}

func (t *Transaction) Complete() bool {
	if t.Status != TransactionStatusPending {
		return false
	}
	t.Status = TransactionStatusCompleted
	return true
}
