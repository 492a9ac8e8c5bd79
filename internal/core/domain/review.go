package domain

import "time"

// Review is a buyer's certified review of a purchased listing.
type Review struct {
	ID        string    `bson:"_id" json:"id"`
	ProductID string    `bson:"product_id" json:"product_id"`
	SellerID  string    `bson:"seller_id" json:"seller_id"`
	AuthorID  string    `bson:"author_id" json:"author_id"`
	Rating    int       `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
