package domain

var Tables = []interface{}{
	// System
	&Account{},
	&PasswordReset{},
	&SysOprLog{},
	// Catalog
	&Product{},
	// Shopping
	&Cart{},
	&CartItem{},
	&Wishlist{},
	&WishlistItem{},
	// Orders
	&Order{},
	&OrderItem{},
	&OrderStatusEntry{},
}
