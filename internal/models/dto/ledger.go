package dto

type TransferRequest struct {
	FromEmail string `json:"from_email"`
	ToEmail   string `json:"to_email"`
	Amount    int64  `json:"amount"`
}

type BillPayRequest struct {
	Email  string `json:"email"`
	Biller string `json:"biller"`
	Amount int64  `json:"amount"`
}

type DepositRequest struct {
	Email  string `json:"email"`
	Amount int64  `json:"amount"`
	Source string `json:"source"`
}
