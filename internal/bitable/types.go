package bitable

import "github.com/MrSnakeDoc/navsite/internal/domain"

// DefaultBaseURL is the Feishu open platform endpoint.
const DefaultBaseURL = "https://open.feishu.cn"

// DefaultPageSize is the largest page the records endpoint accepts.
const DefaultPageSize = 100

type envelope struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

type tokenRequest struct {
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

type tokenResponse struct {
	envelope
	TenantAccessToken string `json:"tenant_access_token"`
	Expire            int    `json:"expire"`
}

type listResponse struct {
	envelope
	Data struct {
		Items     []domain.RawRecord `json:"items"`
		HasMore   bool               `json:"has_more"`
		PageToken string             `json:"page_token"`
		Total     int                `json:"total"`
	} `json:"data"`
}

type createRequest struct {
	Fields domain.Fields `json:"fields"`
}

type createResponse struct {
	envelope
	Data struct {
		Record domain.RawRecord `json:"record"`
	} `json:"data"`
}

type deleteResponse struct {
	envelope
	Data struct {
		Deleted  bool   `json:"deleted"`
		RecordID string `json:"record_id"`
	} `json:"data"`
}
