package program

const (
	betResolvedMetricName = "dice.bet_resolved"
	betRefundedMetricName = "dice.bet_refunded"
)
