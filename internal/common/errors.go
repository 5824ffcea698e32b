// Package common — errors.go определяет ошибки, общие для всех модулей сервиса.
// Обработчики HTTP различают по ним тип проблемы и выбирают код ответа.
package common

import "errors"

// Ошибки входных данных
var (
	// ErrInvalidAction — пустой пользователь или неизвестный тип действия
	ErrInvalidAction = errors.New("некорректное действие")
	// ErrUserNotFound — профиль пользователя не найден в хранилище
	ErrUserNotFound = errors.New("пользователь не найден")
)

// Ошибки клаута
var (
	// ErrDailyLimit — исчерпан дневной лимит для типа действия
	ErrDailyLimit = errors.New("дневной лимит для действия исчерпан")
	// ErrRateLimited — слишком много действий за короткое окно
	ErrRateLimited = errors.New("слишком много действий за последние минуты")
	// ErrReciprocalPattern — подозрение на взаимную накрутку
	ErrReciprocalPattern = errors.New("обнаружена взаимная накрутка")
)

// ErrInvalidCatalog — файл каталога бейджей не прошёл проверку
var ErrInvalidCatalog = errors.New("некорректный каталог бейджей")
