package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Profile struct {
	UserID      string  `json:"user_id"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
	Constraints *string `json:"constraints"`
	University  *string `json:"university"`
	Major       *string `json:"major"`
	YearOfStudy *string `json:"year_of_study"`
}

type ProfilePatch struct {
	FirstName   Field[*string] `json:"first_name"`
	LastName    Field[*string] `json:"last_name"`
	AvatarURL   Field[*string] `json:"avatar_url"`
	Bio         Field[*string] `json:"bio"`
	Constraints Field[*string] `json:"constraints"`
	University  Field[*string] `json:"university"`
	Major       Field[*string] `json:"major"`
	YearOfStudy Field[*string] `json:"year_of_study"`
}

func (p ProfilePatch) ApplyTo(pr *Profile) {
	p.FirstName.Apply(&pr.FirstName)
	p.LastName.Apply(&pr.LastName)
	p.AvatarURL.Apply(&pr.AvatarURL)
	p.Bio.Apply(&pr.Bio)
	p.Constraints.Apply(&pr.Constraints)
	p.University.Apply(&pr.University)
	p.Major.Apply(&pr.Major)
	p.YearOfStudy.Apply(&pr.YearOfStudy)
}
