package request

// The gateway posts its callbacks form-encoded, so these bind form tags
// rather than json.

type SuccessCallbackRequest struct {
	TranID string `form:"tran_id" binding:"required"`
	ValID  string `form:"val_id" binding:"required"`
}

type FailCallbackRequest struct {
	TranID string `form:"tran_id" binding:"required"`
	ValID  string `form:"val_id" binding:"required"`
}

type CancelCallbackRequest struct {
	TranID string `form:"tran_id" binding:"required"`
	ValID  string `form:"val_id" binding:"required"`
}

type IPNRequest struct {
	TranID string `form:"tran_id" binding:"required"`
	Status string `form:"status" binding:"required"`
	ValID  string `form:"val_id" binding:"omitempty"`
}
