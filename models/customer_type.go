package models

const (
	CustomerTypeDomestic = "domestic"
	CustomerTypeForeign  = "foreign"
)

// CustomerType is the pricing category of a customer.
type CustomerType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Type string `gorm:"size:10;not null;uniqueIndex" json:"type"`

	Regulation *CustomerRegulation `gorm:"foreignKey:CustomerTypeID" json:"regulation,omitempty"`
}
