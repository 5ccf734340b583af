package dto

// ── 收容所模块 DTO ──

// ShelterRequest 创建/更新收容所请求；ID 为 0 表示创建
type ShelterRequest struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"        binding:"required,max=128"`
	LoginID     string   `json:"login_id"    binding:"required,numeric,max=32"`
	Phone       string   `json:"phone"       binding:"omitempty,e164"`
	Description string   `json:"description" binding:"max=2000"`
	Capacity    int      `json:"capacity"    binding:"min=0"`
	Active      bool     `json:"active"`
	Visible     bool     `json:"visible"`
	Public      bool     `json:"public"`
	Latitude    *float64 `json:"latitude"    binding:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude"   binding:"omitempty,longitude"`
}

// ShelterResponse 收容所信息
type ShelterResponse struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	LoginID     string   `json:"login_id"`
	Phone       string   `json:"phone"`
	Description string   `json:"description"`
	Capacity    int      `json:"capacity"`
	Active      bool     `json:"active"`
	Visible     bool     `json:"visible"`
	Public      bool     `json:"public"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}
