package sql

import "time"

// FeedCache is the single cached feed row.
type FeedCache struct {
	ID        uint              `gorm:"primaryKey"`
	Timestamp time.Time         `gorm:"not null"`
	Images    []FeedImageRecord `gorm:"foreignKey:CacheID;constraint:OnDelete:CASCADE"`
}

// FeedImageRecord is one image of the cached feed, ordered by Position.
type FeedImageRecord struct {
	ID          uint    `gorm:"primaryKey"`
	CacheID     uint    `gorm:"index;not null"`
	Position    int     `gorm:"not null"`
	ImageID     string  `gorm:"size:36;not null"`
	Description *string `gorm:"type:text"`
	Location    *string `gorm:"type:text"`
	URL         string  `gorm:"type:text;not null"`
}

// TableName pins the table name of feed image rows.
func (FeedImageRecord) TableName() string {
	return "feed_images"
}

// FeedImageData holds image bytes keyed by URL, independent of FeedCache.
type FeedImageData struct {
	URL       string `gorm:"primaryKey;type:text"`
	Data      []byte `gorm:"type:blob"`
	UpdatedAt time.Time
}

// TableName pins the table name of image data rows.
func (FeedImageData) TableName() string {
	return "feed_image_data"
}
