package handler

// NewRegistry builds the method-to-handler mapping once at startup.
// Lookup misses are a first-class dispatcher error, never a reflection
// failure.
func NewRegistry(deps *Deps) map[Method]Handler {
	handlers := []Handler{
		&notifyInteractiveFlowCompleted{deps: deps},
		&requestOffchainFunds{deps: deps},
		&notifyOffchainFundsReceived{deps: deps},
		&notifyOffchainFundsSent{deps: deps},
		&notifyOnchainFundsReceived{deps: deps},
		&notifyAmountsUpdated{deps: deps},
		&doStellarPayment{deps: deps},
		&notifyTrustSet{deps: deps},
		&doStellarRefund{deps: deps},
		&notifyRefundInitiated{deps: deps},
		&notifyRefundPending{deps: deps},
		&notifyRefundSent{deps: deps},
		&notifyTransactionExpired{deps: deps},
		&requestCustomerInfoUpdate{deps: deps},
	}

	registry := make(map[Method]Handler, len(handlers))
	for _, h := range handlers {
		registry[h.Method()] = h
	}
	return registry
}
