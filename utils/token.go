package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// DownloadClaim is the payload of a signed invoice PDF download link.
// Session auth uses Redis tokens; these JWTs only authorize a single
// document for a short window so links can be opened outside the app.
type DownloadClaim struct {
	InvoiceId int `json:"invoice_id"`
	UserId    int `json:"user_id"`
	jwt.StandardClaims
}

var jwtSecret = []byte(getJwtSecret())

func getJwtSecret() string {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return "Fieldworks-Secret"
	}
	return secret
}

func downloadLinkLifespan() time.Duration {
	minutes, err := strconv.Atoi(os.Getenv("PDF_LINK_MINUTES"))
	if err != nil || minutes <= 0 {
		minutes = 15
	}
	return time.Duration(minutes) * time.Minute
}

func JwtGenerateDownload(invoiceId int, userId int) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &DownloadClaim{
		InvoiceId: invoiceId,
		UserId:    userId,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(downloadLinkLifespan()).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})

	token, err := t.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}

	return token, nil
}

func JwtValidateDownload(token string) (*DownloadClaim, error) {
	parsed, err := jwt.ParseWithClaims(token, &DownloadClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrorForbidden
	}
	claim, ok := parsed.Claims.(*DownloadClaim)
	if !ok {
		return nil, ErrorForbidden
	}
	return claim, nil
}
