package model

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// トークンが無いときの操作者
const AnonymousActor = "anonymous"
