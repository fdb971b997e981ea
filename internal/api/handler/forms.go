package handler

// Field shape rules live here, at the request boundary; uniqueness and other
// persistence rules stay in the identity service so it can be tested without
// any HTTP machinery.

type registerForm struct {
	Username string `form:"username" validate:"required,min=3,max=80"`
	Email    string `form:"email" validate:"required,email,max=120"`
	Password string `form:"password" validate:"required,min=6,max=72"`
	Confirm  string `form:"confirm" validate:"required,eqfield=Password"`
	FullName string `form:"full_name" validate:"max=120"`
	Bio      string `form:"bio" validate:"max=500"`
}

type loginForm struct {
	Identifier string `form:"username_or_email" validate:"required,min=3,max=120"`
	Password   string `form:"password" validate:"required"`
	Next       string `form:"next"`
}

type editProfileForm struct {
	FullName string `form:"full_name" validate:"max=120"`
	Email    string `form:"email" validate:"required,email,max=120"`
	Bio      string `form:"bio" validate:"max=500"`
}
