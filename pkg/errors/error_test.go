package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeInvalidParameter, "invalid parameter: %s", "test")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter: test", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeSeriesNotFound, "series not found", cause)
	suite.NotNil(err)
	suite.Equal(ErrCodeSeriesNotFound, err.Code)
	suite.Equal("series not found", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("underlying error")
	err := Wrapf(ErrCodeSeriesNotFound, cause, "series not found: %s", "CPIAUCSL")
	suite.NotNil(err)
	suite.Equal(ErrCodeSeriesNotFound, err.Code)
	suite.Equal("series not found: CPIAUCSL", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestErrorStringWithCause() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeSeriesNotFound, "series not found", cause)
	suite.Equal("[200] series not found: underlying error", err.Error())
}

func (suite *ErrorTestSuite) TestUnwrap() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeSeriesNotFound, "series not found", cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestUnwrapNil() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Nil(err.Unwrap())
}

func (suite *ErrorTestSuite) TestGetCode() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal(ErrCodeInvalidParameter, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeFromWrapped() {
	cause := New(ErrCodeSeriesNotFound, "series not found")
	err := Wrap(ErrCodeRangeUnavailable, "range unavailable", cause)
	// GetCode should return the outermost error's code
	suite.Equal(ErrCodeRangeUnavailable, GetCode(err))
}

func (suite *ErrorTestSuite) TestGetCodeFromPlainError() {
	err := errors.New("standard error")
	suite.Equal(ErrCodeUnknown, GetCode(err))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.True(HasCode(err, ErrCodeInvalidParameter))
	suite.False(HasCode(err, ErrCodeSeriesNotFound))
}

func (suite *ErrorTestSuite) TestIsError() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeSeriesNotFound, "series not found", cause)
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestAsError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	var codedErr *Error
	suite.True(As(err, &codedErr))
	suite.Equal(ErrCodeInvalidParameter, codedErr.Code)
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(105), ErrCodeUnsupportedPeriodicity)
	suite.Equal(ErrorCode(200), ErrCodeSeriesNotFound)
	suite.Equal(ErrorCode(201), ErrCodeRangeUnavailable)
	suite.Equal(ErrorCode(300), ErrCodeProviderUnreachable)
	suite.Equal(ErrorCode(400), ErrCodeWriteFailed)
}

func (suite *ErrorTestSuite) TestStatusError() {
	err := NewStatusError("fred", 400, "Bad Request.  The series does not exist.")
	suite.Equal("fred: status 400: Bad Request.  The series does not exist.", err.Error())

	bare := NewStatusError("polygon", 503, "")
	suite.Equal("polygon: status 503", bare.Error())
}

func (suite *ErrorTestSuite) TestGetStatusCodeThroughWrap() {
	cause := NewStatusError("fred", 404, "not found")
	err := Wrap(ErrCodeSeriesNotFound, "series lookup failed", cause)
	suite.Equal(404, GetStatusCode(err))
	suite.True(HasCode(err, ErrCodeSeriesNotFound))
}

func (suite *ErrorTestSuite) TestGetStatusCodeMissing() {
	suite.Equal(0, GetStatusCode(errors.New("plain")))
	suite.Equal(0, GetStatusCode(nil))
}
