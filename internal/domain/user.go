package domain

type User struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	Email     string `db:"email" json:"email"`
	Hash      string `db:"password_hash" json:"-"`
	CreatedAt string `db:"created_at" json:"-"`
}

// Principal is the resolved identity a request acts as. The zero value is
// the anonymous principal.
type Principal struct {
	UserID   int64
	Username string
}

var Anonymous = Principal{}

func PrincipalFor(u *User) Principal {
	return Principal{UserID: u.ID, Username: u.Username}
}

func (p Principal) IsAnonymous() bool { return p.UserID == 0 }

// Is reports whether p is the user with the given id. Ownership is only ever
// a direct, immutable owner reference.
func (p Principal) Is(userID int64) bool {
	return !p.IsAnonymous() && p.UserID == userID
}
