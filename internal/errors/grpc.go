package errors

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToGRPCError converts an error to a gRPC status error
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}

	// Already a gRPC status error
	if _, ok := status.FromError(err); ok {
		return err
	}

	var customErr *Error
	if As(err, &customErr) {
		return status.Error(customErr.Code.GRPCCode(), customErr.Message)
	}

	return status.Error(codes.Internal, err.Error())
}

// GRPCStatus returns the gRPC status for any error
func GRPCStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}

	if st, ok := status.FromError(err); ok {
		return st
	}

	var customErr *Error
	if As(err, &customErr) {
		return status.New(customErr.Code.GRPCCode(), customErr.Message)
	}

	return status.New(codes.Internal, err.Error())
}

// GRPCCode returns the corresponding gRPC code
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeOK:
		return codes.OK
	case CodeCanceled:
		return codes.Canceled
	case CodeInvalidArgument:
		return codes.InvalidArgument
	case CodeDeadlineExceeded:
		return codes.DeadlineExceeded
	case CodeNotFound:
		return codes.NotFound
	case CodeAlreadyExists:
		return codes.AlreadyExists
	case CodeResourceExhausted:
		return codes.ResourceExhausted
	case CodeFailedPrecondition:
		return codes.FailedPrecondition
	case CodeUnimplemented:
		return codes.Unimplemented
	case CodeInternal:
		return codes.Internal
	case CodeUnavailable:
		return codes.Unavailable
	case CodeDataLoss:
		return codes.DataLoss
	default:
		return codes.Unknown
	}
}
