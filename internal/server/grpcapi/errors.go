package grpcapi

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/heimsight/heimsight/internal/storage/duckstore"
)

// storageStatus maps a backend insert failure to a gRPC status,
// mirroring httpapi/errors.go's classifyError taxonomy for the gRPC
// transport: infrastructure failures are retryable (Unavailable),
// everything else is Internal.
func storageStatus(err error) error {
	var storeErr *duckstore.StorageError
	if errors.As(err, &storeErr) && storeErr.Type == duckstore.ErrorTypeInfrastructure {
		return status.Error(codes.Unavailable, storeErr.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
