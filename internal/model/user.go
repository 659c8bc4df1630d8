// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// IDはGoogleが発行するsubject識別子をそのまま主キーとして使用する。
// 初回ログイン時に作成され、以降プロフィールは更新・削除されない。
type User struct {
	ID        string
	Email     string
	Name      string
	Picture   string
	CreatedAt time.Time
}
