package application

const (
	idHeader = "id"

	// Google Sheets configuration
	sheetsOwnerRole = "writer"

	// Excel export configuration
	excelDefaultSheet  = "Sheet1"
	excelFallbackName  = "Plans"
	excelMaxSheetName  = 31
	excelHeaderColor   = "FFD700" // Gold
	excelColumnWidth   = 18
	excelIDColumnWidth = 12
)
