package api

// Wire DTOs for the central backend. Field names follow the backend's
// camelCase JSON convention; converters.go maps them onto domain models.

// TokenResponse is the login/refresh reply.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// BuildingDTO is a building as the backend serves it.
type BuildingDTO struct {
	BuildingUUID       string   `json:"buildingUuid"`
	BuildingID         string   `json:"buildingId"`
	GovernorateCode    string   `json:"governorateCode"`
	GovernorateName    string   `json:"governorateName"`
	GovernorateNameAr  string   `json:"governorateNameAr"`
	DistrictCode       string   `json:"districtCode"`
	DistrictName       string   `json:"districtName"`
	DistrictNameAr     string   `json:"districtNameAr"`
	SubdistrictCode    string   `json:"subdistrictCode"`
	SubdistrictName    string   `json:"subdistrictName"`
	SubdistrictNameAr  string   `json:"subdistrictNameAr"`
	CommunityCode      string   `json:"communityCode"`
	CommunityName      string   `json:"communityName"`
	CommunityNameAr    string   `json:"communityNameAr"`
	NeighborhoodCode   string   `json:"neighborhoodCode"`
	NeighborhoodName   string   `json:"neighborhoodName"`
	NeighborhoodNameAr string   `json:"neighborhoodNameAr"`
	BuildingNumber     string   `json:"buildingNumber"`
	BuildingType       string   `json:"buildingType"`
	BuildingStatus     string   `json:"buildingStatus"`
	NumberOfUnits      int      `json:"numberOfUnits"`
	NumberOfApartments int      `json:"numberOfApartments"`
	NumberOfShops      int      `json:"numberOfShops"`
	NumberOfFloors     int      `json:"numberOfFloors"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	GeoLocation        string   `json:"geoLocation"`
	CreatedAt          string   `json:"createdAt"`
	UpdatedAt          string   `json:"updatedAt"`
}

// UnitDTO is a property unit as the backend serves it.
type UnitDTO struct {
	UnitUUID            string   `json:"unitUuid"`
	UnitID              string   `json:"unitId"`
	BuildingID          string   `json:"buildingId"`
	UnitType            string   `json:"unitType"`
	UnitNumber          string   `json:"unitNumber"`
	FloorNumber         int      `json:"floorNumber"`
	ApartmentNumber     string   `json:"apartmentNumber"`
	ApartmentStatus     string   `json:"apartmentStatus"`
	PropertyDescription string   `json:"propertyDescription"`
	AreaSqm             *float64 `json:"areaSqm"`
	CreatedAt           string   `json:"createdAt"`
	UpdatedAt           string   `json:"updatedAt"`
}

// PersonDTO is a person as the backend serves it.
type PersonDTO struct {
	PersonID        string `json:"personId"`
	FirstName       string `json:"firstName"`
	FirstNameAr     string `json:"firstNameAr"`
	FatherName      string `json:"fatherName"`
	FatherNameAr    string `json:"fatherNameAr"`
	MotherName      string `json:"motherName"`
	MotherNameAr    string `json:"motherNameAr"`
	LastName        string `json:"lastName"`
	LastNameAr      string `json:"lastNameAr"`
	Gender          string `json:"gender"`
	YearOfBirth     *int   `json:"yearOfBirth"`
	Nationality     string `json:"nationality"`
	NationalID      string `json:"nationalId"`
	PassportNumber  string `json:"passportNumber"`
	PhoneNumber     string `json:"phoneNumber"`
	MobileNumber    string `json:"mobileNumber"`
	Email           string `json:"email"`
	Address         string `json:"address"`
	IsContactPerson bool   `json:"isContactPerson"`
	IsDeceased      bool   `json:"isDeceased"`
}

// HouseholdDTO is household occupancy data as the backend serves it.
type HouseholdDTO struct {
	HouseholdID         string   `json:"householdId"`
	UnitID              string   `json:"unitId"`
	MainOccupantID      string   `json:"mainOccupantId"`
	MainOccupantName    string   `json:"mainOccupantName"`
	OccupancySize       int      `json:"occupancySize"`
	MaleCount           int      `json:"maleCount"`
	FemaleCount         int      `json:"femaleCount"`
	MinorsCount         int      `json:"minorsCount"`
	AdultsCount         int      `json:"adultsCount"`
	ElderlyCount        int      `json:"elderlyCount"`
	WithDisabilityCount int      `json:"withDisabilityCount"`
	OccupancyType       string   `json:"occupancyType"`
	OccupancyNature     string   `json:"occupancyNature"`
	MonthlyRent         *float64 `json:"monthlyRent"`
}

// SurveyDTO is a field/office survey as the backend serves it.
type SurveyDTO struct {
	SurveyID         string `json:"surveyId"`
	BuildingID       string `json:"buildingId"`
	UnitID           string `json:"unitId"`
	FieldCollectorID string `json:"fieldCollectorId"`
	SurveyDate       string `json:"surveyDate"`
	SurveyType       string `json:"surveyType"`
	Status           string `json:"status"`
	ReferenceCode    string `json:"referenceCode"`
	Source           string `json:"source"`
	Notes            string `json:"notes"`
	CreatedAt        string `json:"createdAt"`
	FinalizedAt      string `json:"finalizedAt"`
}

// SurveyContextDTO is the enriched survey detail: the survey joined with its
// building, unit, households, persons, and claim summaries.
type SurveyContextDTO struct {
	Survey     SurveyDTO           `json:"survey"`
	Building   BuildingDTO         `json:"building"`
	Unit       UnitDTO             `json:"unit"`
	Households []HouseholdDTO      `json:"households"`
	Persons    []PersonDTO         `json:"persons"`
	Claims     []SurveyClaimDTO    `json:"claims"`
	ClaimData  *SurveyClaimDataDTO `json:"claimData"`
}

// SurveyClaimDTO is a claim summary linked to a survey.
type SurveyClaimDTO struct {
	ClaimID   string `json:"claimId"`
	ClaimType string `json:"claimType"`
	Status    string `json:"status"`
}

// SurveyClaimDataDTO is the flattened claim view embedded in a survey.
type SurveyClaimDataDTO struct {
	ClaimType      string `json:"claimType"`
	Priority       string `json:"priority"`
	Source         string `json:"source"`
	CaseStatus     string `json:"caseStatus"`
	PersonName     string `json:"personName"`
	UnitDisplayID  string `json:"unitDisplayId"`
	BusinessNature string `json:"businessNature"`
	SurveyDate     string `json:"surveyDate"`
	Notes          string `json:"notes"`
	EvidenceCount  int    `json:"evidenceCount"`
}

// pageDTO is the backend's paginated list envelope.
type pageDTO[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// healthDTO is the backend health probe reply.
type healthDTO struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
