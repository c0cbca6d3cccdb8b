package handler

// Запросы и ответы HTTP API. Имена полей повторяют клиентский контракт.

type initRequest struct {
	ThreadID string `json:"thread_id" binding:"required"`
	Story    string `json:"story" binding:"required"`
	Truth    string `json:"truth" binding:"required"`
	Model    string `json:"model"`
}

type initResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Model   string `json:"model"`
}

type chatRequest struct {
	ThreadID string `json:"thread_id" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

type costData struct {
	Tokens int     `json:"tokens"`
	Cost   float64 `json:"cost"`
	Model  string  `json:"model"`
}

type chatResponse struct {
	Reply     string   `json:"reply"`
	Summary   string   `json:"summary"`
	TurnCount int      `json:"turn_count"`
	CostData  costData `json:"cost_data"`
}

type registerRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	InviteCode string `json:"invite_code" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
