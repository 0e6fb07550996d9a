package app

import (
	"time"

	"github.com/roach88/appcache/internal/schema"
)

// DateLayout is the storage format of Record.UpdateDate.
const DateLayout = "2006-01-02"

// Item is one application as fetched from the marketplace.
type Item struct {
	ID         string   `yaml:"id" json:"id"`
	AppName    string   `yaml:"appName" json:"appName"`
	Rating     *float64 `yaml:"rating" json:"rating"`
	InstallFee int64    `yaml:"install_fee" json:"install_fee"`
	AppIcon    string   `yaml:"app_icon" json:"app_icon"`

	InAppPurchases *bool  `yaml:"inAppPurchases,omitempty" json:"inAppPurchases,omitempty"`
	ContainsAds    *bool  `yaml:"containsAds,omitempty" json:"containsAds,omitempty"`
	NumReviews     *int64 `yaml:"num_reviews,omitempty" json:"num_reviews,omitempty"`

	Permissions []string `yaml:"permissions,omitempty" json:"permissions,omitempty"`
	Categories  []string `yaml:"categories,omitempty" json:"categories,omitempty"`
}

// IsPartial reports whether any of the optional detail fields is missing.
func (i Item) IsPartial() bool {
	return i.InAppPurchases == nil || i.ContainsAds == nil || i.NumReviews == nil
}

// Record is a complete cached application.
type Record struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Rating         *float64  `json:"rating"`
	InstallFee     int64     `json:"install_fee"`
	AppIcon        string    `json:"app_icon"`
	UpdateDate     time.Time `json:"update_date"`
	IsPartialInfo  bool      `json:"is_partial_info"`
	NumReviews     *int64    `json:"num_reviews"`
	InAppPurchases *bool     `json:"in_app_purchases"`
	ContainsAds    *bool     `json:"contains_ads"`

	Permissions []schema.Entry `json:"permissions"`
	Categories  []schema.Entry `json:"categories"`
}

// IsFree reports whether the application has no install fee.
func (r *Record) IsFree() bool {
	return r.InstallFee == 0
}

// Ptr returns a pointer to v. Convenient for building Items.
func Ptr[T any](v T) *T {
	return &v
}
