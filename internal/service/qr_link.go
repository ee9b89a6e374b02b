package service

import (
	"net/url"
	"strings"

	"github.com/prperemyshlev/easyped-service/pkg/qrcode"
)

// QRRenderer builds the public emergency link of a QR token and renders it as a PNG data URL
type QRRenderer struct {
	baseURL    string
	publicPath string
	size       int
}

// NewQRRenderer creates a renderer for links of the form baseURL/publicPath/<token>
func NewQRRenderer(baseURL, publicPath string, size int) *QRRenderer {
	return &QRRenderer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		publicPath: strings.Trim(publicPath, "/"),
		size:       size,
	}
}

// Link returns the URL encoded into the QR image
func (r *QRRenderer) Link(qrToken string) string {
	token := url.PathEscape(qrToken)
	if r.publicPath == "" {
		return r.baseURL + "/" + token
	}
	return r.baseURL + "/" + r.publicPath + "/" + token
}

// Render returns the data URL of the QR image for qrToken
func (r *QRRenderer) Render(qrToken string) (string, error) {
	return qrcode.DataURL(r.Link(qrToken), r.size)
}
