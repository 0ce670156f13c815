package model

// User 平台用户（买家 / 卖家）
// 软删除使用 deleted 标记，不物理删除
type User struct {
	BaseModel
	Email     string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string `gorm:"size:255;not null" json:"-"` // bcrypt 哈希
	FirstName string `gorm:"size:100" json:"first_name"`
	LastName  string `gorm:"size:100" json:"last_name"`
	Phone     string `gorm:"size:50" json:"phone"`
	Locale    string `gorm:"size:10;default:en" json:"locale"`
	Address   string `gorm:"size:500" json:"address"`

	IsSeller bool `gorm:"default:false" json:"is_seller"`
	IsActive bool `gorm:"default:true" json:"is_active"`
	Deleted  bool `gorm:"default:false;index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// FullName 展示用姓名
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// CanLogin 账号可用
func (u *User) CanLogin() bool {
	return u.IsActive && !u.Deleted
}
