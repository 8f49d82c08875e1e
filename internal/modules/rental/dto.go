package rental

type ReserveRequest struct {
	ClientID  int64   `json:"client_id" binding:"required"`
	UnitIDs   []int64 `json:"unit_ids" binding:"required"`
	StartDate string  `json:"start_date" binding:"required"`
	EndDate   string  `json:"end_date" binding:"required"`
}

type ReturnRequest struct {
	LineIDs    []int64 `json:"line_ids" binding:"required"`
	ReturnDate string  `json:"return_date" binding:"required"`
}
