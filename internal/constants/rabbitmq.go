package constants

// Имена очередей
const (
	QueueNewListings = "new_listings_notifications"
)

// Ключи маршрутизации
const (
	RoutingKeyNewListings = "listings.new"
)

const ListingsExchange = "listings_exchange"
