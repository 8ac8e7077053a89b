package models

// Response models shared by the stock and planner handlers, plus the
// common request/response bodies referenced by swagger annotations.

// ElementCountResponse is one leaf of the stockyard snapshot served to the
// erection planner. The Balance_elements and "left _elements" keys are kept
// as-is for compatibility with stored snapshots and older clients.
type ElementCountResponse struct {
	ElementType      string `json:"element_type"`
	ElementTypeID    int    `json:"element_type_id"`
	ElementTypeName  string `json:"element_type_name"`
	BalancelElements int    `json:"Balance_elements"`
	Leftelements     int    `json:"left _elements"`
	FloorID          int    `json:"floor_id"`
	Disable          bool   `json:"disable"`
}

type ErectionOrderResponce struct {
	PrecastStockID    int     `json:"precast_stock_id" example:"101"`
	ElementID         int     `json:"element_id" example:"2001"`
	ElementTypeID     int     `json:"element_type_id" example:"5"`
	ElementTypeName   string  `json:"element_type_name" example:"Steel Beam"`
	ElementType       string  `json:"element_type" example:"Beam"`
	ElementTypeWeight float64 `json:"element_type_weight" example:"150.5"`
	FloorName         string  `json:"floor_name" example:"Ground Floor"`
	TowerName         string  `json:"tower_name" example:"Tower A"`
	FloorID           int     `json:"floor_id" example:"10"`
	ElementName       string  `json:"element_name" example:"Beam 1"`
	Disable           bool    `json:"disable" example:"false"`
	Status            string  `json:"status" example:"Approved"`
}

// Planner request bodies. Every mutation on a planner session goes through
// one of these.

type SelectTowerRequest struct {
	Tower string `json:"tower" binding:"required" example:"Tower A"`
}

type SelectFloorRequest struct {
	Floor string `json:"floor" binding:"required" example:"Floor 1"`
}

type SetCategoryRequest struct {
	Category string `json:"category" binding:"required" example:"Wall"`
}

type ToggleItemRequest struct {
	ElementTypeID int `json:"element_type_id" binding:"required" example:"5"`
}

type SetQuantityRequest struct {
	ItemIndex int `json:"item_index"`
	Quantity  int `json:"quantity"`
}

type AddBlockRequest struct {
	Mode string `json:"mode" binding:"required" example:"keepTowerAndFloor"`
}

type SetActiveBlockRequest struct {
	Block int `json:"block" example:"0"`
}

// PlanDraftRequest is the body for saving a named plan draft.
type PlanDraftRequest struct {
	Name string      `json:"name" binding:"required" example:"Tower A phase 2"`
	Plan interface{} `json:"plan" binding:"required"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	PageSize     int  `json:"page_size"`
	TotalRecords int  `json:"total_records"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrev      bool `json:"has_prev"`
}

// ErrorResponse is used in @Failure for error responses
type ErrorResponse struct {
	Error   string `json:"error" example:"Invalid input"`
	Details string `json:"details,omitempty" example:""`
}

// LoginRequest is used in @Param for login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password"`
	IP       string `json:"ip" binding:"required" example:"192.168.1.1"`
}

// LoginResponse is used in @Success for login
type LoginResponse struct {
	Message     string    `json:"message" example:"User successfully logged in"`
	AccessToken string    `json:"access_token" example:"eyJhbGc..."`
	Role        string    `json:"role" example:"admin"`
	User        LoginUser `json:"user"`
}

// LoginUser is the user object inside LoginResponse
type LoginUser struct {
	ID    int    `json:"id" example:"1"`
	Email string `json:"email" example:"user@example.com"`
}

// SuccessResponse is used in @Success for generic success
type SuccessResponse struct {
	Message string      `json:"message" example:"Success"`
	Data    interface{} `json:"data,omitempty"`
}
