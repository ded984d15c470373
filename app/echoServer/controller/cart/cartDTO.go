package cart

type AddItemReq struct {
	BookID   int64 `json:"book_id" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"gte=0,lte=999"`
}

type SetQuantityReq struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=999"`
}
