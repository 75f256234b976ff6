package service

const (
	EndpointPredict = "predict"
	EndpointCompare = "compare"
	EndpointHealth  = "health"
)

const (
	outcomeOK    = "ok"
	outcomeCache = "cache"
)
