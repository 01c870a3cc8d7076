package models

// Account represents a helpdesk user. A nil PasswordHash marks a temporary
// account, which authenticates without a password check.
type Account struct {
	ID             int     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Username       string  `json:"username" gorm:"uniqueIndex;type:varchar(100)"`
	PasswordHash   *string `json:"passwordHash,omitempty" gorm:"type:varchar(255)"`
	Email          string  `json:"email"`
	FullName       string  `json:"fullName"`
	ProfilePicture string  `json:"profilePicture"`
	Theme          string  `json:"theme"`
	Notifications  bool    `json:"notifications"`
	IsAdmin        bool    `json:"isAdmin"`
}

// IsTemporary reports whether the account has no password set.
func (a *Account) IsTemporary() bool {
	return a.PasswordHash == nil
}

// Sanitized returns a copy of the account without its password hash.
func (a Account) Sanitized() Account {
	a.PasswordHash = nil
	return a
}
