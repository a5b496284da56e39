package service

import "github.com/google/uuid"

// IDAssigner は取り込んだ点に一意なIDを発行する
type IDAssigner interface {
	Assign() string
}

// UUIDAssigner はランダムなUUID(v4)でIDを発行する
type UUIDAssigner struct{}

// NewUUIDAssigner は新しいUUIDAssignerを作成
func NewUUIDAssigner() *UUIDAssigner {
	return &UUIDAssigner{}
}

// Assign 新しいIDを発行する
func (UUIDAssigner) Assign() string {
	return uuid.New().String()
}
