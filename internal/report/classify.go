package report

import (
	"errors"
	"net"
	"regexp"
	"strings"

	"github.com/aws/smithy-go"

	"github.com/yairfalse/cfs/internal/shape"
)

// Category is one bucket of the fixed error taxonomy.
type Category string

// Categories in precedence order.
const (
	NoInternetAccess        Category = "NoInternetAccess"
	AuthenticationMissing   Category = "AuthenticationMissing"
	AuthenticationExpired   Category = "AuthenticationExpired"
	AuthenticationInvalid   Category = "AuthenticationInvalid"
	InsufficientPermissions Category = "InsufficientPermissions"
	SchemaValidationFailed  Category = "SchemaValidationFailed"
	Unknown                 Category = "Unknown"
)

// Categories lists every category in precedence order.
var Categories = []Category{
	NoInternetAccess,
	AuthenticationMissing,
	AuthenticationExpired,
	AuthenticationInvalid,
	InsufficientPermissions,
	SchemaValidationFailed,
	Unknown,
}

// Rule maps an error shape to a category.
type Rule struct {
	Category Category
	Match    func(err error) bool
}

var notAuthorizedPattern = regexp.MustCompile(`^(User: arn:aws:).+( is not authorized to perform: ).+( on resource: ).+( deny)`)

// credentialSignatures are fragments the SDK's credential chain produces when
// no provider could supply credentials.
var credentialSignatures = []string{
	"failed to refresh cached credentials",
	"failed to retrieve credentials",
	"no EC2 IMDS role found",
	"Could not load credentials from any providers",
}

// Rules is the ordered classification table. The first matching rule wins.
var Rules = []Rule{
	{NoInternetAccess, isDNSFailure},
	{AuthenticationMissing, isMissingCredentials},
	{AuthenticationExpired, codeIs("RequestExpired", "ExpiredToken", "ExpiredTokenException")},
	{AuthenticationInvalid, codeWithStatus("AuthFailure", 401)},
	{AuthenticationInvalid, codeWithStatus("InvalidAccessKeyId", 403)},
	{AuthenticationInvalid, codeWithStatus("InvalidClientTokenId", 403)},
	{InsufficientPermissions, codeWithStatus("AccessDenied", 403)},
	{InsufficientPermissions, codeWithStatus("AuthorizationError", 403)},
	{InsufficientPermissions, codeWithStatus("UnauthorizedOperation", 403)},
	{InsufficientPermissions, codeWithStatus("AccessDeniedException", 400)},
	{InsufficientPermissions, isGenericNotAuthorized},
	{SchemaValidationFailed, isValidationError},
}

// Classify returns the category of err.
func Classify(err error) Category {
	for _, r := range Rules {
		if r.Match(err) {
			return r.Category
		}
	}
	return Unknown
}

func isDNSFailure(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isMissingCredentials(err error) bool {
	msg := err.Error()
	for _, sig := range credentialSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

func isValidationError(err error) bool {
	var verr *shape.ValidationError
	return errors.As(err, &verr)
}

func isGenericNotAuthorized(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	status := httpStatus(err)
	return (status == 400 || status == 403) && notAuthorizedPattern.MatchString(apiErr.ErrorMessage())
}

func codeIs(codes ...string) func(error) bool {
	return func(err error) bool {
		code := errorCode(err)
		for _, c := range codes {
			if code == c {
				return true
			}
		}
		return false
	}
}

func codeWithStatus(code string, status int) func(error) bool {
	return func(err error) bool {
		return errorCode(err) == code && httpStatus(err) == status
	}
}

func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// httpStatus digs the response status out of an SDK error chain, 0 if absent.
func httpStatus(err error) int {
	var withStatus interface{ HTTPStatusCode() int }
	if errors.As(err, &withStatus) {
		return withStatus.HTTPStatusCode()
	}
	return 0
}
