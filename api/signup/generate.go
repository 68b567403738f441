package signup

//go:generate swag init --generalInfo router.go --dir ../../internal/signup/http,../../pkg/signupsdk,../../pkg/jwtx --output . --outputTypes go --packageName signup
