package api

// SendSMSCodeRequest asks the backend to text a login code.
type SendSMSCodeRequest struct {
	AppName string `json:"app_name"`
	Mobile  string `json:"mobile"`
	Type    string `json:"type"`
	T       int    `json:"t"`
}

type SendSMSCodeResponse struct {
	OK bool `json:"ok"`
}

type RegisterMobileRequest struct {
	AppName string `json:"app_name"`
	Mobile  string `json:"mobile"`
	Code    string `json:"code"`
}

// PQLoginInfo is a block the phone login response embeds from an upstream
// identity service. The only place the numeric user id and the normalized
// mobile number are available is its Data field.
type PQLoginInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Level    string `json:"level"`
		CofitUID string `json:"cofit_uid"`
		LevelID  int    `json:"level_id"`
		Mobile   string `json:"mobile"`
		ID       int    `json:"id"`
	} `json:"data"`
}

type RegisterMobileResponse struct {
	AccessToken          string       `json:"access_token"`
	FirstName            string       `json:"first_name"`
	LastName             string       `json:"last_name"`
	NickName             string       `json:"nick_name"`
	AvatarThumbnailURL   string       `json:"avatar_thumbnail_url"`
	TermsOfServiceAgreed bool         `json:"terms_of_service_agreed"`
	PasswordSet          bool         `json:"password_set"`
	PQLoginInfo          *PQLoginInfo `json:"pq_login_info"`
}

type SignInRequest struct {
	AppName  string `json:"app_name"`
	Source   string `json:"source"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	AccessToken          string  `json:"access_token"`
	FirstName            *string `json:"first_name"`
	LastName             string  `json:"last_name"`
	NickName             string  `json:"nick_name"`
	AvatarThumbnailURL   string  `json:"avatar_thumbnail_url"`
	TermsOfServiceAgreed bool    `json:"terms_of_service_agreed"`
}

// MediaUploadInfo is the raw upload ticket as the backend sends it.
type MediaUploadInfo struct {
	URL       string `json:"url"`
	ResultURL string `json:"result_url"`
	Storage   string `json:"storage"`
	Name      string `json:"name"`
	Key       string `json:"key"`
	CDNURL    string `json:"cdn_url"`
}
