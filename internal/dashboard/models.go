package dashboard

import (
	"time"

	"filehub/internal/audit"
)

type Stats struct {
	UserStats         UserStats         `json:"user_stats"`
	FileStats         FileStats         `json:"file_stats"`
	ActivityStats     ActivityStats     `json:"activity_stats"`
	SystemPerformance SystemPerformance `json:"system_performance"`
	SharedLinkStats   SharedLinkStats   `json:"shared_link_stats"`
}

type UserStats struct {
	TotalUsers           int            `json:"total_users"`
	ActiveUsers          int            `json:"active_users"`
	InactiveUsers        int            `json:"inactive_users"`
	AdminUsers           int            `json:"admin_users"`
	RegularUsers         int            `json:"regular_users"`
	UserTypeDistribution map[string]int `json:"user_type_distribution"`
	NewUsersThisWeek     int            `json:"new_users_this_week"`
	NewUsersThisMonth    int            `json:"new_users_this_month"`
	LastUserCreated      *time.Time     `json:"last_user_created,omitempty"`
}

type FileStats struct {
	TotalFiles             int            `json:"total_files"`
	TotalFolders           int            `json:"total_folders"`
	TotalSizeBytes         int64          `json:"total_size_bytes"`
	TotalSizeFormatted     string         `json:"total_size_formatted"`
	FilesUploadedToday     int            `json:"files_uploaded_today"`
	FilesUploadedThisWeek  int            `json:"files_uploaded_this_week"`
	FilesUploadedThisMonth int            `json:"files_uploaded_this_month"`
	DeletedFiles           int            `json:"deleted_files"`
	FileTypeDistribution   map[string]int `json:"file_type_distribution"`
	SharedFiles            int            `json:"shared_files"`
	AverageFileSize        int64          `json:"average_file_size"`
	TopFileUsers           []TopFileUser  `json:"top_file_users"`
}

type TopFileUser struct {
	UserID             string `json:"user_id"`
	UserName           string `json:"user_name"`
	UserEmail          string `json:"user_email"`
	FileCount          int    `json:"file_count"`
	TotalSizeBytes     int64  `json:"total_size_bytes"`
	TotalSizeFormatted string `json:"total_size_formatted"`
}

type ActivityStats struct {
	TotalAuditLogs       int                  `json:"total_audit_logs"`
	LoginsToday          int                  `json:"logins_today"`
	LoginsThisWeek       int                  `json:"logins_this_week"`
	LoginsThisMonth      int                  `json:"logins_this_month"`
	FailedLoginsToday    int                  `json:"failed_logins_today"`
	AdminActionsToday    int                  `json:"admin_actions_today"`
	AdminActionsThisWeek int                  `json:"admin_actions_this_week"`
	RecentActivities     []RecentActivity     `json:"recent_activities"`
	ActionDistribution   map[audit.Action]int `json:"action_distribution"`
}

type RecentActivity struct {
	UserEmail    string       `json:"user_email"`
	UserName     string       `json:"user_name"`
	Action       audit.Action `json:"action"`
	Description  string       `json:"description"`
	Timestamp    time.Time    `json:"timestamp"`
	IsSuccessful bool         `json:"is_successful"`
	IPAddress    string       `json:"ip_address"`
}

type SystemPerformance struct {
	AverageFilesPerDay      float64       `json:"average_files_per_day"`
	AverageFilesPerWeek     float64       `json:"average_files_per_week"`
	AverageFilesPerMonth    float64       `json:"average_files_per_month"`
	AverageLoginsPerDay     float64       `json:"average_logins_per_day"`
	StorageGrowthPercentage float64       `json:"storage_growth_percentage"`
	FilesUploadedToday      int           `json:"files_uploaded_today"`
	FilesUploadedThisWeek   int           `json:"files_uploaded_this_week"`
	FilesUploadedThisMonth  int           `json:"files_uploaded_this_month"`
	DailyMetrics            []DailyMetric `json:"daily_metrics"`
}

type DailyMetric struct {
	Date         time.Time `json:"date"`
	FileUploads  int       `json:"file_uploads"`
	UserLogins   int       `json:"user_logins"`
	AdminActions int       `json:"admin_actions"`
	StorageUsed  int64     `json:"storage_used"`
}

type SharedLinkStats struct {
	TotalSharedLinks      int                 `json:"total_shared_links"`
	ActiveSharedLinks     int                 `json:"active_shared_links"`
	ExpiredSharedLinks    int                 `json:"expired_shared_links"`
	LinksExpiringThisWeek int                 `json:"links_expiring_this_week"`
	LinksCreatedThisMonth int                 `json:"links_created_this_month"`
	LinksExpiringSoon     []ExpiringLink      `json:"links_expiring_soon"`
	MostSharedFiles       []PopularSharedFile `json:"most_shared_files"`
}

type ExpiringLink struct {
	FileName            string    `json:"file_name"`
	OwnerEmail          string    `json:"owner_email"`
	OwnerUserName       string    `json:"owner_user_name"`
	ExpirationDate      time.Time `json:"expiration_date"`
	DaysUntilExpiration int       `json:"days_until_expiration"`
}

type PopularSharedFile struct {
	FileName   string     `json:"file_name"`
	OwnerEmail string     `json:"owner_email"`
	ShareCount int        `json:"share_count"`
	LastShared *time.Time `json:"last_shared,omitempty"`
}
