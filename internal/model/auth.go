package model

// AccessToken is the object embedded in the signed access token the
// presentation layer sends with every request.
type AccessToken struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	WalletAddress string `json:"wallet_address"`
}

type WalletLoginRequest struct {
	Address string `json:"address"`
}

type WalletLoginResponse struct {
	Address string `json:"address"`
	Nonce   string `json:"nonce"`
}

type WalletVerifyRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

type WalletVerifyResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}
