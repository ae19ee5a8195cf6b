package ledger

import "errors"

// Error taxonomy for ledger transitions. Handlers map these to HTTP codes;
// services return them unwrapped so callers can use errors.Is.
var (
	ErrUnauthorized      = errors.New("Unauthorized access")
	ErrUnauthorizedAdmin = errors.New("Only the platform authority can perform this action")

	ErrInvalidAmount  = errors.New("Amount must be greater than 0")
	ErrInvalidFeeRate = errors.New("Fee rate must be between 0 and 10000 basis points")

	ErrProjectInactive            = errors.New("Project is inactive")
	ErrInvalidProjectOwner        = errors.New("Invalid project owner")
	ErrInvalidCarbonPayAuthority  = errors.New("Invalid CarbonPay authority")
	ErrInvalidProjectMint         = errors.New("Invalid project mint")
	ErrInvalidCertificateMint     = errors.New("Invalid certificate mint")
	ErrInvalidCertificateAccount  = errors.New("Invalid certificate account")
	ErrInvalidProject             = errors.New("Invalid project for this purchase")

	ErrInsufficientTokens          = errors.New("Insufficient tokens available")
	ErrInsufficientRemainingTokens = errors.New("Insufficient remaining tokens for offset")
	ErrInsufficientFungibleTokens  = errors.New("Insufficient fungible tokens in account")
	ErrInsufficientFunds           = errors.New("Insufficient funds")

	ErrNotPurchaseOwner = errors.New("Only the purchase owner can request an offset")

	ErrInvalidRequestStatus    = errors.New("Invalid request status")
	ErrRequestAlreadyProcessed = errors.New("Offset request already processed")
	ErrInvalidOffsetRequest    = errors.New("Invalid offset request")
	ErrOffsetRequestExists     = errors.New("Offset request already exists")

	ErrArithmeticOverflow = errors.New("Arithmetic overflow")

	ErrRegistryExists         = errors.New("Registry already initialized")
	ErrRegistryNotInitialized = errors.New("Registry not initialized")
)
