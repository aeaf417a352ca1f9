package service

import (
	"fmt"
	"log"
	"math"
	"strconv"

	"fandreams/internal/domain"
	"fandreams/internal/models"
	"fandreams/internal/repository"

	"gorm.io/gorm"
)

// GuildService manages creator collectives with a shared coin treasury.
// Members auto-contribute a percentage of their earnings; combo subscription
// revenue is split equally across current members with the integer remainder
// going to the treasury.
type GuildService struct {
	repo    *repository.GuildRepository
	fancoin *FancoinService
}

func NewGuildService(repo *repository.GuildRepository, fancoin *FancoinService) *GuildService {
	return &GuildService{repo: repo, fancoin: fancoin}
}

type CreateGuildParams struct {
	Name                string
	Slug                string
	ContributionPercent float64
	ComboPrice          float64
}

func (s *GuildService) Create(leaderID uint, params CreateGuildParams) (*models.Guild, error) {
	if params.Name == "" || params.Slug == "" {
		return nil, domain.Errorf(domain.CodeInvalidConfiguration, "guild name and slug are required")
	}
	if params.ContributionPercent <= 0 {
		params.ContributionPercent = domain.GuildDefaultContributionPercent
	}
	if params.ContributionPercent > domain.GuildMaxContributionPercent {
		return nil, domain.Errorf(domain.CodeInvalidConfiguration,
			"treasury contribution cannot exceed %.0f%%", domain.GuildMaxContributionPercent)
	}
	if existing, err := s.repo.GetMemberByUserID(leaderID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.Errorf(domain.CodeAlreadyExists, "user already belongs to a guild")
	}

	guild := &models.Guild{
		Name:                        params.Name,
		Slug:                        params.Slug,
		LeaderID:                    leaderID,
		TreasuryContributionPercent: params.ContributionPercent,
		ComboSubscriptionPrice:      params.ComboPrice,
		TotalMembers:                1,
		MaxMembers:                  domain.GuildMaxMembers,
		IsActive:                    true,
	}
	leader := &models.GuildMember{UserID: leaderID, Role: domain.GuildRoleLeader}
	if err := s.repo.Create(guild, leader); err != nil {
		return nil, err
	}
	return guild, nil
}

func (s *GuildService) Get(guildID uint) (*models.Guild, error) {
	g, err := s.repo.GetByID(guildID)
	if err == gorm.ErrRecordNotFound {
		return nil, domain.Errorf(domain.CodeNotFound, "guild %d not found", guildID)
	}
	return g, err
}

func (s *GuildService) Join(guildID, userID uint) error {
	if existing, err := s.repo.GetMemberByUserID(userID); err != nil {
		return err
	} else if existing != nil {
		return domain.Errorf(domain.CodeAlreadyExists, "user already belongs to a guild")
	}
	joined, err := s.repo.AddMember(guildID, &models.GuildMember{
		UserID: userID,
		Role:   domain.GuildRoleMember,
	})
	if err != nil {
		return err
	}
	if !joined {
		return domain.Errorf(domain.CodeInvalidStatus, "guild is full or inactive")
	}
	return nil
}

type ContributionResult struct {
	Contribution    int64 `json:"contribution"`
	TreasuryBalance int64 `json:"treasury_balance"`
}

// ContributeFromEarnings moves the configured percentage of a member's fresh
// earnings into the guild treasury. Non-members and sub-coin contributions
// are no-ops, never errors, so earning paths can call this unconditionally.
func (s *GuildService) ContributeFromEarnings(userID uint, earningsCoins int64) (*ContributionResult, error) {
	if earningsCoins <= 0 {
		return nil, nil
	}
	member, err := s.repo.GetMemberByUserID(userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, nil
	}
	guild, err := s.repo.GetByID(member.GuildID)
	if err != nil {
		return nil, err
	}
	contribution := int64(math.Floor(float64(earningsCoins) * guild.TreasuryContributionPercent / 100))
	if contribution <= 0 {
		return nil, nil
	}

	refID := strconv.FormatUint(uint64(guild.ID), 10)
	if _, err := s.fancoin.Debit(userID, contribution, false, domain.LedgerGuildContribution, refID,
		fmt.Sprintf("Treasury contribution to guild %s (%.1f%%)", guild.Name, guild.TreasuryContributionPercent)); err != nil {
		if err == domain.ErrInsufficientBalance {
			return nil, nil
		}
		return nil, err
	}
	balance, err := s.repo.CreditTreasury(guild.ID, userID, contribution, "contribution",
		fmt.Sprintf("Automatic contribution (%.1f%%)", guild.TreasuryContributionPercent))
	if err != nil {
		log.Printf("[guild] treasury credit failed after member debit (guild=%d user=%d amount=%d): %v",
			guild.ID, userID, contribution, err)
		return nil, err
	}
	return &ContributionResult{Contribution: contribution, TreasuryBalance: balance}, nil
}

type ComboResult struct {
	PriceCoins int64 `json:"price_coins"`
	PerMember  int64 `json:"per_member"`
	Members    int   `json:"members"`
	Remainder  int64 `json:"remainder"`
}

// SubscribeCombo charges a fan's wallet for the guild's combo subscription
// and splits the coins across current members.
func (s *GuildService) SubscribeCombo(guildID, fanID uint) (*ComboResult, error) {
	guild, err := s.Get(guildID)
	if err != nil {
		return nil, err
	}
	if guild.ComboSubscriptionPrice <= 0 {
		return nil, domain.Errorf(domain.CodeInvalidConfiguration, "guild has no combo subscription")
	}
	priceCoins := CoinsFromFiat(guild.ComboSubscriptionPrice, s.fancoin.settings.CoinRate())
	if priceCoins <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	refID := strconv.FormatUint(uint64(guildID), 10)
	if _, err := s.fancoin.Debit(fanID, priceCoins, false, domain.LedgerGuildComboSub, refID,
		fmt.Sprintf("Combo subscription to guild %s", guild.Name)); err != nil {
		return nil, err
	}
	if err := s.repo.IncrementSubscribers(guildID, 1); err != nil {
		log.Printf("[guild] subscriber count bump failed (guild=%d): %v", guildID, err)
	}
	return s.DistributeCombo(guildID, priceCoins, refID)
}

// DistributeCombo splits combo revenue equally across members. Used both for
// wallet-paid subscriptions and for settled external combo payments. The
// remainder after integer division lands in the treasury so no coin is lost.
func (s *GuildService) DistributeCombo(guildID uint, coins int64, referenceID string) (*ComboResult, error) {
	guild, err := s.Get(guildID)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(guildID)
	if err != nil {
		return nil, err
	}
	result := &ComboResult{PriceCoins: coins, Members: len(members)}
	if len(members) == 0 {
		return result, nil
	}
	result.PerMember = coins / int64(len(members))
	result.Remainder = coins - result.PerMember*int64(len(members))

	if result.PerMember > 0 {
		for _, member := range members {
			if _, err := s.fancoin.Credit(member.UserID, result.PerMember, false,
				domain.LedgerGuildComboShare, referenceID,
				fmt.Sprintf("Combo subscription share, guild %s", guild.Name)); err != nil {
				log.Printf("[guild] combo share credit failed (guild=%d member=%d): %v",
					guildID, member.UserID, err)
			}
		}
	}
	if result.Remainder > 0 {
		if _, err := s.repo.CreditTreasury(guildID, guild.LeaderID, result.Remainder,
			"combo_remainder", "Combo split remainder"); err != nil {
			log.Printf("[guild] remainder treasury credit failed (guild=%d): %v", guildID, err)
		}
	}
	return result, nil
}

func (s *GuildService) TreasuryHistory(guildID uint, limit int) ([]models.GuildTreasuryTx, error) {
	return s.repo.ListTreasuryTransactions(guildID, limit)
}

type UserGuildView struct {
	Guild            *models.Guild `json:"guild"`
	Role             string        `json:"role"`
	TotalContributed int64         `json:"total_contributed"`
}

func (s *GuildService) GetUserGuild(userID uint) (*UserGuildView, error) {
	member, err := s.repo.GetMemberByUserID(userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, nil
	}
	guild, err := s.repo.GetByID(member.GuildID)
	if err != nil {
		return nil, err
	}
	return &UserGuildView{Guild: guild, Role: member.Role, TotalContributed: member.TotalContributed}, nil
}
