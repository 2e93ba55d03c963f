package usecase

import (
	"errors"
	"fmt"
	"net/http"

	repo "catalog/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
	// 元のエラー（errors.Is/Asで辿れる）
	Err error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func wrapHTTPError(status int, message string, err error) error {
	return &HTTPError{
		Status:  status,
		Message: message,
		Err:     err,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 商品が無いときの唯一のドメインエラー
func errProductNotFound() error {
	return wrapHTTPError(http.StatusNotFound, "product not found", repo.ErrNotFound)
}

// IsNotFound は商品が見つからなかったエラーかどうか
func IsNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound)
}
