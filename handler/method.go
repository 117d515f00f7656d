package handler

// Method is the RPC method tag an action handler serves.
type Method string

const (
	MethodNotifyInteractiveFlowCompleted Method = "notify_interactive_flow_completed"
	MethodRequestOffchainFunds           Method = "request_offchain_funds"
	MethodNotifyOffchainFundsReceived    Method = "notify_offchain_funds_received"
	MethodNotifyOffchainFundsSent        Method = "notify_offchain_funds_sent"
	MethodNotifyOnchainFundsReceived     Method = "notify_onchain_funds_received"
	MethodNotifyAmountsUpdated           Method = "notify_amounts_updated"
	MethodDoStellarPayment               Method = "do_stellar_payment"
	MethodNotifyTrustSet                 Method = "notify_trust_set"
	MethodDoStellarRefund                Method = "do_stellar_refund"
	MethodNotifyRefundInitiated          Method = "notify_refund_initiated"
	MethodNotifyRefundPending            Method = "notify_refund_pending"
	MethodNotifyRefundSent               Method = "notify_refund_sent"
	MethodNotifyTransactionExpired       Method = "notify_transaction_expired"
	MethodRequestCustomerInfoUpdate      Method = "request_customer_info_update"
)
