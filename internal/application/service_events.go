package application

const (
	// eventTypeOrderConfirmed is emitted when a paid checkout becomes an order.
	eventTypeOrderConfirmed = "order.confirmed"
	// eventTypeOrderShipped is emitted when an order gains tracking details.
	eventTypeOrderShipped = "order.shipped"
	// eventTypeOrderDelivered is emitted when an order reaches its terminal delivered state.
	eventTypeOrderDelivered = "order.delivered"
	// eventTypeCreditsAwarded is emitted once per order when loyalty credits post.
	eventTypeCreditsAwarded = "credits.awarded"
	// eventTypeCreditsRedeemed is emitted when credits are exchanged for a discount code.
	eventTypeCreditsRedeemed = "credits.redeemed"
	// eventTypeWaitlistJoined is emitted when a new waitlist entry is created.
	eventTypeWaitlistJoined = "waitlist.joined"
	// eventTypeWaitlistUpdated is emitted when an existing entry merges in new sizes.
	eventTypeWaitlistUpdated = "waitlist.updated"
	// eventTypeUserRegistered is emitted when a storefront account is created.
	eventTypeUserRegistered = "user.registered"
	// eventTypeCartReminder is emitted when an abandoned-cart reminder stage fires.
	eventTypeCartReminder = "cart.reminder"
	// eventTypeLowStock is emitted when a commit leaves a variant at or below its threshold.
	eventTypeLowStock = "stock.low"
)
