package models

type UserRole string
type Category string
type ListingType string
type TimeUnit string
type OfferStatus string
type TransactionStatus string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	CategoryElectronics Category = "ELECTRONICS"
	CategorySupplies    Category = "SUPPLIES"
	CategoryServices    Category = "SERVICES"
	CategoryFurniture   Category = "FURNITURE"
	CategoryVehicles    Category = "VEHICLES"
	CategoryOthers      Category = "OTHERS"

	ListingTypeRental  ListingType = "RENTAL"
	ListingTypeService ListingType = "SERVICE"

	TimeUnitOneTime TimeUnit = "OT"
	TimeUnitHourly  TimeUnit = "H"
	TimeUnitDaily   TimeUnit = "D"
	TimeUnitWeekly  TimeUnit = "W"

	OfferStatusPending  OfferStatus = "P"
	OfferStatusAccepted OfferStatus = "A"
	OfferStatusRejected OfferStatus = "R"
	OfferStatusPaid     OfferStatus = "C"

	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
)

var categoryLabels = map[Category]string{
	CategoryElectronics: "Electronics",
	CategorySupplies:    "Supplies",
	CategoryServices:    "Services",
	CategoryFurniture:   "Furniture",
	CategoryVehicles:    "Vehicles",
	CategoryOthers:      "Others",
}

var listingTypeLabels = map[ListingType]string{
	ListingTypeRental:  "Rental",
	ListingTypeService: "Service",
}

var timeUnitLabels = map[TimeUnit]string{
	TimeUnitOneTime: "One Time",
	TimeUnitHourly:  "Hourly",
	TimeUnitDaily:   "Daily",
	TimeUnitWeekly:  "Weekly",
}

var offerStatusLabels = map[OfferStatus]string{
	OfferStatusPending:  "Pending",
	OfferStatusAccepted: "Accepted",
	OfferStatusRejected: "Rejected",
	OfferStatusPaid:     "Paid",
}

var transactionStatusLabels = map[TransactionStatus]string{
	TransactionStatusPending:   "Pending",
	TransactionStatusCompleted: "Completed",
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Display() string {
	return categoryLabels[c]
}

func (t ListingType) Valid() bool {
	_, ok := listingTypeLabels[t]
	return ok
}

func (t ListingType) Display() string {
	return listingTypeLabels[t]
}

func (u TimeUnit) Valid() bool {
	_, ok := timeUnitLabels[u]
	return ok
}

func (u TimeUnit) Display() string {
	return timeUnitLabels[u]
}

func (s OfferStatus) Valid() bool {
	_, ok := offerStatusLabels[s]
	return ok
}

func (s OfferStatus) Display() string {
	return offerStatusLabels[s]
}

func (s TransactionStatus) Valid() bool {
	_, ok := transactionStatusLabels[s]
	return ok
}

func (s TransactionStatus) Display() string {
	return transactionStatusLabels[s]
}

func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}
