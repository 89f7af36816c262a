package utils

import (
	"errors"
	"regexp"
)

// Формальная валидация входа HTTP-слоя. Экономические правила
// (границы депозита, лимиты на счёт) проверяет движок.

var (
	ErrEmptyIdentity   = errors.New("identity cannot be empty")
	ErrIdentityTooLong = errors.New("identity exceeds 128 characters")
	ErrBadIdentity     = errors.New("identity contains invalid characters")
	ErrBadAssetID      = errors.New("asset id must be 2-16 uppercase alphanumerics")
)

var (
	identityRe = regexp.MustCompile(`^[A-Za-z0-9._:-]+$`)
	assetIDRe  = regexp.MustCompile(`^[A-Z0-9]{2,16}$`)
)

// ValidateIdentity проверяет формат идентичности вкладчика или контроллера
func ValidateIdentity(id string) error {
	if id == "" {
		return ErrEmptyIdentity
	}
	if len(id) > 128 {
		return ErrIdentityTooLong
	}
	if !identityRe.MatchString(id) {
		return ErrBadIdentity
	}
	return nil
}

// ValidateAssetID проверяет формат идентификатора актива (USDT, WETH)
func ValidateAssetID(id string) error {
	if !assetIDRe.MatchString(id) {
		return ErrBadAssetID
	}
	return nil
}
