package services

import (
	"context"
	"strings"

	"github.com/campus-hub/eventhub/internal/helpers"
	"github.com/campus-hub/eventhub/internal/models"
)

type UserService struct {
	env     *Env
	storage ObjectStorage
}

func NewUserService(env *Env, storage ObjectStorage) *UserService {
	return &UserService{env: env, storage: storage}
}

type SignupInput struct {
	Name      string `json:"name" validate:"required"`
	Surname   string `json:"surname" validate:"required"`
	Age       int    `json:"age" validate:"required,gt=0"`
	Gender    string `json:"gender" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,len=10,numeric"`
	RegNumber string `json:"regNumber" validate:"required"`
	Password  string `json:"password" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=STUDENT ORGANIZER"`
}

func (in *SignupInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Surname = strings.TrimSpace(in.Surname)
	in.Gender = strings.TrimSpace(in.Gender)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.RegNumber = strings.TrimSpace(in.RegNumber)
	in.Role = strings.ToUpper(strings.TrimSpace(in.Role))
}

// Signup registers a user. Organizer signups start as students pending approval.
func (us *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.normalize()
	if err := models.Validate.Struct(in); err != nil {
		return nil, models.Invalidf("%v", err)
	}
	if !helpers.IsPasswordStrong(in.Password) {
		return nil, models.Invalidf("password must contain uppercase, lowercase, number and be at least 6 characters long")
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var created models.User
	err = us.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		now := us.env.now()
		u := models.User{
			Name:      in.Name,
			Surname:   in.Surname,
			Age:       in.Age,
			Gender:    in.Gender,
			Email:     in.Email,
			Phone:     in.Phone,
			RegNumber: in.RegNumber,
			Password:  hash,
			Role:      in.Role,
		}
		if field, taken := agg.IdentityTaken(&u); taken {
			return models.Conflictf("%s already in use", field)
		}
		if u.Role == models.RoleOrganizer {
			u.Role = models.RoleStudent
			u.OrganizerStatus = models.OrganizerPending
		}
		u.ID = agg.NextID(now)
		agg.Users = append(agg.Users, u)
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	us.env.Logger.Info("user signed up", "reg_number", created.RegNumber, "organizer_status", created.OrganizerStatus)
	pub := created.Public()
	return &pub, nil
}

// Login checks the credentials and records the visit.
func (us *UserService) Login(ctx context.Context, regNumber, password string) (*models.User, error) {
	regNumber = strings.TrimSpace(regNumber)
	var user models.User
	err := us.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		u := agg.FindUser(regNumber)
		if u == nil || !helpers.CheckPassword(u.Password, password) {
			return models.ErrUnauthorized
		}
		u.Touch(us.env.now())
		user = u.Public()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (us *UserService) GetProfile(ctx context.Context, regNumber string) (*models.User, error) {
	agg, err := us.env.Gateway.Read(ctx)
	if err != nil {
		return nil, err
	}
	u, err := agg.RequireUser(regNumber)
	if err != nil {
		return nil, err
	}
	pub := u.Public()
	return &pub, nil
}

func (us *UserService) UpdateProfile(ctx context.Context, regNumber string, update models.ProfileUpdate) (*models.User, error) {
	var user models.User
	err := us.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		u, err := agg.RequireUser(regNumber)
		if err != nil {
			return err
		}
		update.Apply(u)
		u.Touch(us.env.now())
		user = u.Public()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (us *UserService) ChangePassword(ctx context.Context, regNumber, current, next string) error {
	if !helpers.IsPasswordStrong(next) {
		return models.Invalidf("password must contain uppercase, lowercase, number and be at least 6 characters long")
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return err
	}
	return us.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		u, err := agg.RequireUser(regNumber)
		if err != nil {
			return err
		}
		if !helpers.CheckPassword(u.Password, current) {
			return models.ErrUnauthorized
		}
		u.Password = hash
		agg.NotifyText(regNumber, "🔐 Your password has been changed.", us.env.now())
		return nil
	})
}

// DeleteAccount removes the caller after confirming the password.
func (us *UserService) DeleteAccount(ctx context.Context, regNumber, password string) error {
	var objects []models.Media
	var eventIDs []int64
	err := us.env.Gateway.Update(ctx, func(agg *models.Aggregate) error {
		u := agg.FindUser(regNumber)
		if u == nil || !helpers.CheckPassword(u.Password, password) {
			return models.ErrUnauthorized
		}
		objects, eventIDs = purgeAccount(agg, regNumber)
		return nil
	})
	if err != nil {
		return err
	}

	deleteObjects(ctx, us.storage, us.env.Logger, objects)
	for _, id := range eventIDs {
		us.env.publish(PushEventsChanged, "deleted", id, "")
	}
	us.env.Logger.Info("account deleted", "reg_number", regNumber)
	return nil
}

// purgeAccount erases regNumber from the aggregate: tickets, waitlist and
// volunteer rows, events they created with their media, their messages,
// their inbox and finally the user record. It returns the stored objects
// that must be deleted and the ids of the removed events.
func purgeAccount(agg *models.Aggregate, regNumber string) ([]models.Media, []int64) {
	for i := range agg.Events {
		agg.Events[i].PurgeUser(regNumber)
	}

	var objects []models.Media
	var eventIDs []int64
	for _, ev := range append([]models.Event(nil), agg.Events...) {
		if ev.CreatorRegNumber != regNumber {
			continue
		}
		objects = append(objects, agg.RemoveMediaFor(ev.ID)...)
		agg.RemoveEvent(ev.ID)
		eventIDs = append(eventIDs, ev.ID)
	}

	kept := agg.Messages[:0]
	for _, m := range agg.Messages {
		if m.FromReg == regNumber || m.ToReg == regNumber {
			if m.PublicID != "" {
				objects = append(objects, models.Media{PublicID: m.PublicID, Type: m.MediaType})
			}
			continue
		}
		kept = append(kept, m)
	}
	agg.Messages = kept

	delete(agg.Notifications, regNumber)
	if idx := agg.UserIndex(regNumber); idx >= 0 {
		agg.Users = append(agg.Users[:idx], agg.Users[idx+1:]...)
	}
	return objects, eventIDs
}
