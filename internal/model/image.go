package model

// Image 已上传图片的元数据，二进制存放在对象存储
type Image struct {
	BaseModel
	UserID   int64  `gorm:"index" json:"user_id"`
	Key      string `gorm:"size:512;uniqueIndex;not null" json:"key"`
	URL      string `gorm:"size:1024;not null" json:"url"`
	Size     int64  `json:"size"`
	MimeType string `gorm:"size:100" json:"mimetype"`
	Folder   string `gorm:"size:100;index" json:"folder"`
}

func (Image) TableName() string {
	return "images"
}
