package filemanager

const (
	opListFiles       = "list_files"
	opCreateFolder    = "create_folder"
	opUpload          = "upload"
	opSaveMetadata    = "save_metadata"
	opDelete          = "delete"
	opDeleteMany      = "delete_many"
	opMove            = "move"
	opMoveMany        = "move_many"
	opUpdateProps     = "update_properties"
	opUpdatePropsMany = "update_properties_many"
	opShare           = "share"
	opCreateLink      = "create_link"
)

const (
	msgClientIDRequired   = "every folder must be assigned to a client"
	msgClientNotActive    = "the selected client does not exist or is not active"
	msgRootUploadDenied   = "files cannot be uploaded to the root; choose a folder assigned to a client"
	msgParentMissing      = "destination folder does not exist"
	msgParentNoClient     = "files cannot be uploaded to a folder without an assigned client"
	msgEntryNotFound      = "file item not found"
	msgNoAccessibleItems  = "none of the selected items are accessible"
	msgAccessDenied       = "you do not have permission to modify this item"
	msgOnlyFiles          = "only files have title and expiration properties"
	msgNoFilesSelected    = "none of the selected items are files"
	msgNotAFile           = "item is not a file"
	msgNoStoredContent    = "file has no stored content"
	msgRecipientInvalid   = "share recipient does not exist or is not active"
	msgShareSelf          = "cannot share a file with its owner"
	msgGrantNotFound      = "share not found"
	msgLinkNotFound       = "shared link not found"
	msgLinkExpired        = "shared link has expired"
	msgExpirationInPast   = "expiration date must be in the future"
	msgWriteFailed        = "failed to store file content"
	msgMetadataFailed     = "failed to save file metadata"
	msgCleanupBlobFailed  = "failed to remove orphaned blob"
	msgLookupFailed       = "failed to load file item"
	msgUpdateFailed       = "failed to update file items"
)
