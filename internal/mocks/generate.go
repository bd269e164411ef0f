package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Fetcher --dir ../domain/document --output domain/document --outpkg documentmock --filename fetcher_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name SessionFactory --dir ../domain/document --output domain/document --outpkg documentmock --filename session_factory_mock.go
