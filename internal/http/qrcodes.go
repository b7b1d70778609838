package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"qrcode-api/internal/qrcode"
	"qrcode-api/internal/repository"
)

// qrOptionsRequest holds the rendering options shared by every QR payload.
type qrOptionsRequest struct {
	Scale      *int   `json:"scale"`
	Border     *int   `json:"border"`
	ErrorLevel string `json:"error_level"`
	Dark       string `json:"dark"`
	Light      string `json:"light"`
	FileFormat string `json:"file_format"`
}

func (r qrOptionsRequest) options() (qrcode.Options, error) {
	opts := qrcode.DefaultOptions()
	if format := strings.ToLower(strings.TrimSpace(r.FileFormat)); format != "" && format != qrcode.FormatPNG {
		return opts, fmt.Errorf("unsupported file format %q", r.FileFormat)
	}
	if r.Scale != nil {
		opts.Scale = *r.Scale
	}
	if r.Border != nil {
		opts.Border = *r.Border
	}
	if r.ErrorLevel != "" {
		opts.ErrorLevel = qrcode.ErrorLevel(strings.ToUpper(r.ErrorLevel))
	}
	if r.Dark != "" {
		opts.Dark = r.Dark
	}
	if r.Light != "" {
		opts.Light = r.Light
	}
	return opts, nil
}

type basicQRCodeRequest struct {
	qrOptionsRequest
	Data any `json:"data" binding:"required"`
}

type locationQRCodeRequest struct {
	qrOptionsRequest
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

type wifiQRCodeRequest struct {
	qrOptionsRequest
	SSID     string `json:"ssid" binding:"required"`
	Password string `json:"password"`
	Security string `json:"security"`
}

type vCardQRCodeRequest struct {
	qrOptionsRequest
	Name        string   `json:"name" binding:"required"`
	DisplayName string   `json:"displayname" binding:"required"`
	Email       []string `json:"email"`
	URL         []string `json:"url"`
}

func (r vCardQRCodeRequest) Validate() error {
	errs := validation.Errors{}
	for i, email := range r.Email {
		errs[fmt.Sprintf("email[%d]", i)] = validation.Validate(email, validation.Required, is.Email)
	}
	for i, u := range r.URL {
		errs[fmt.Sprintf("url[%d]", i)] = validation.Validate(u, validation.Required, is.URL)
	}
	return errs.Filter()
}

func basicData(v any) (string, error) {
	switch data := v.(type) {
	case string:
		return data, nil
	default:
		raw, err := json.Marshal(data)
		if err != nil {
			return "", fmt.Errorf("encode data: %w", err)
		}
		return string(raw), nil
	}
}

func (h *Handler) createBasicQRCode(c *gin.Context) {
	var req basicQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	data, err := basicData(req.Data)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	h.createQRCode(c, data, req.qrOptionsRequest)
}

func (h *Handler) createLocationQRCode(c *gin.Context) {
	var req locationQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	data, err := qrcode.GeoURI(*req.Latitude, *req.Longitude)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	h.createQRCode(c, data, req.qrOptionsRequest)
}

func (h *Handler) createWiFiQRCode(c *gin.Context) {
	var req wifiQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	data, err := qrcode.WiFi(req.SSID, req.Password, req.Security)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	h.createQRCode(c, data, req.qrOptionsRequest)
}

func (h *Handler) createVCardQRCode(c *gin.Context) {
	var req vCardQRCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err.Error())
		return
	}
	data, err := qrcode.VCard(req.Name, req.DisplayName, req.Email, req.URL)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	h.createQRCode(c, data, req.qrOptionsRequest)
}

func (h *Handler) createQRCode(c *gin.Context, data string, optsReq qrOptionsRequest) {
	opts, err := optsReq.options()
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	code, err := h.qrcodes.Create(c.Request.Context(), currentUser(c), data, opts)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, qrCodeToResponse(*code))
}

func (h *Handler) listMyQRCodes(c *gin.Context) {
	params, sorting, err := h.pageParams(c, repository.QRCodeSortFields)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	page, err := h.qrcodes.ListByUser(c.Request.Context(), currentUser(c).ID, params, sorting)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, qrCodePageToResponse(page))
}

func (h *Handler) listQRCodes(c *gin.Context) {
	params, sorting, err := h.pageParams(c, repository.QRCodeSortFields)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	page, err := h.qrcodes.ListAll(c.Request.Context(), params, sorting)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, qrCodePageToResponse(page))
}

func (h *Handler) deleteQRCode(c *gin.Context) {
	id, ok := parseID(c, "invalid qr code id")
	if !ok {
		return
	}
	if err := h.qrcodes.Delete(c.Request.Context(), id); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
