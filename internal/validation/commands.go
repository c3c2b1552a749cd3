package validation

type LoginCommand struct {
	Identifier string `form:"email_or_username" validate:"required"`
	Password   string `form:"login_password" validate:"required"`
	Remember   bool   `form:"-"`
}

type SignupCommand struct {
	FullName        string `form:"full_name" validate:"required,fullname"`
	Username        string `form:"username" validate:"required,username"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,password"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
	Phone           string `form:"phone" validate:"omitempty,phone11"`
}

type ForgotPasswordCommand struct {
	Email string `form:"email" validate:"required,email"`
}

type ResetPasswordCommand struct {
	Password        string `form:"password" validate:"required,password"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

type UpdateProfileCommand struct {
	FullName string `form:"full_name" validate:"required,fullname"`
	Email    string `form:"email" validate:"required,email"`
	Phone    string `form:"phone" validate:"omitempty,phone11"`
}

type ChangePasswordCommand struct {
	CurrentPassword string `form:"current_password" validate:"required"`
	NewPassword     string `form:"new_password" validate:"required,password"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// CheckoutCommand is parsed but not validated here: checkout preconditions
// are checked in a fixed order by the checkout service. Card number and CVV
// are read straight into byte slices by the handler and never become
// strings.
type CheckoutCommand struct {
	PickupTime    string `form:"pickup_time"`
	PaymentMethod string `form:"payment_method"`
	CardExpiry    string `form:"card_expiry"`
}

type ReviewCommand struct {
	Rating     int      `form:"rating" validate:"required,min=1,max=5"`
	Title      string   `form:"title" validate:"required"`
	Content    string   `form:"content" validate:"required"`
	Categories []string `form:"categories"`
}

type ReplyCommand struct {
	ReviewID      string `form:"review_id" validate:"required,uuid"`
	ParentReplyID string `form:"parent_reply_id" validate:"omitempty,uuid"`
	Content       string `form:"content" validate:"required"`
}

type ReactionCommand struct {
	ReviewID string `form:"review_id" validate:"required,uuid"`
	Emoji    string `form:"emoji" validate:"required,max=16"`
}
