package services

import (
	"encoding/base64"
	"fmt"
	"html/template"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// PrintLayout everything the print page needs for one card.
type PrintLayout struct {
	VariantKey   string
	VariantLabel string
	CardNo       string
	Card         interface{}
	PhotoURL     string
	SignatureURL string
	QRDataURI    template.URL
}

// QRDataURI encodes content as an inline PNG data URI.
func QRDataURI(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, qrSize)
	if err != nil {
		return "", fmt.Errorf("qr encode: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// NewPrintLayout builds the layout for a card whose files are served under /api/<assetRoute>.
func NewPrintLayout(variantKey, variantLabel, assetRoute, cardNo string, card interface{}) (*PrintLayout, error) {
	qr, err := QRDataURI(cardNo)
	if err != nil {
		return nil, err
	}
	return &PrintLayout{
		VariantKey:   variantKey,
		VariantLabel: variantLabel,
		CardNo:       cardNo,
		Card:         card,
		PhotoURL:     fmt.Sprintf("/api/%s/%s/%s", assetRoute, CategoryImages, cardNo),
		SignatureURL: fmt.Sprintf("/api/%s/%s/%s", assetRoute, CategorySignature, cardNo),
		QRDataURI:    template.URL(qr),
	}, nil
}
