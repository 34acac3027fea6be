package service

import "errors"

// Ошибки валидации: клиент может исправить запрос и повторить.
// Слой handlers отображает их в 400.
var (
	ErrEmptyOrder        = errors.New("order cannot be empty")
	ErrBadAmount         = errors.New("position amount must be positive")
	ErrBadStatus         = errors.New("unknown order status")
	ErrBadPrice          = errors.New("price must be positive")
	ErrBadStars          = errors.New("stars must be between 0 and 5")
	ErrDuplicatePosition = errors.New("duplicate product in order positions")
	ErrAlreadyReviewed   = errors.New("you have already reviewed this product")
	// ErrUnknownProduct — в теле запроса указан несуществующий товар.
	// Это ошибка полезной нагрузки (400), а не адресуемого ресурса (404).
	ErrUnknownProduct = errors.New("unknown product referenced in request")
)

// ErrInvalidCredentials — неверный пароль или пользователь не прошел проверку.
// Отделяется от инфраструктурных ошибок хранилища, которые отдаются как 500.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Ошибки авторизации: у актора нет прав на действие в текущем состоянии.
// Слой handlers отображает их в 403 с конкретной причиной.
var (
	ErrStatusOnCreate  = errors.New("status cannot be set on creation")
	ErrStatusNotStaff  = errors.New("only an administrator may change order status")
	ErrOrderNotNew     = errors.New("only NEW orders may be modified by their creator")
	ErrNotOwner        = errors.New("only creator or administrator may modify")
	ErrStaffOnly       = errors.New("administrator access required")
)
