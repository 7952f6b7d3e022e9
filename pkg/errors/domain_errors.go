package errors

var (
	ErrInvalidCredentials   = InvalidArg("invalid credentials")
	ErrEmailTaken           = AlreadyExists("email is already registered")
	ErrUserNotFound         = NotFound("user not found")
	ErrListingNotFound      = NotFound("listing not found")
	ErrConversationNotFound = NotFound("conversation not found")
	ErrOrderNotFound        = NotFound("order not found")
	ErrNotMember            = Forbidden("you are not a member of this conversation")
	ErrNotOwner             = Forbidden("only the seller or an administrator can change this listing")
	ErrSelfConversation     = InvalidArg("cannot start a conversation with yourself")
	ErrEmptyMessage         = InvalidArg("message text cannot be empty")
	ErrMessageTooLong       = InvalidArg("message text is too long")
	ErrInvalidRecipient     = InvalidArg("recipient is not a member of this conversation")
	ErrListingSold          = InvalidArg("listing is already sold")
	ErrOwnListing           = InvalidArg("cannot buy your own listing")
	ErrNothingToCharge      = InvalidArg("listing has no price to charge")
	ErrInvalidPrice         = InvalidArg("price must be a non-negative number below 10000000000")
	ErrTooManyImages        = InvalidArg("at most 5 images are allowed")
)
