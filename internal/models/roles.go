package models

// Roles a user record can carry. Creation always assigns RoleUser;
// RoleAdmin accounts are provisioned out of band.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)
